package model

import (
	"time"
)

// InvestmentModel 投资记录
//
// 与项目 funding_raised 的增加在同一事务中创建，创建后不可变。
type InvestmentModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	InvestorId int64 `json:"investorId" gorm:"not null;index"`
	ProjectId  int64 `json:"projectId" gorm:"not null;index"`

	Tokens float64 `json:"tokens" gorm:"not null"`
	Amount float64 `json:"amount" gorm:"not null"`
	TxHash string  `json:"txHash" gorm:"uniqueIndex;not null"` // 模拟链上交易哈希

	Status         InvestmentStatus `json:"status" gorm:"default:'completed'"`
	ExpectedPayout float64          `json:"expectedPayout"` // amount * (1 + roi/100)
	MaturityDate   time.Time        `json:"maturityDate"`   // now + tenure 年
	PaymentMethod  string           `json:"paymentMethod"`
}

// TableName 自定义表名
func (InvestmentModel) TableName() string {
	return "investment"
}

// InvestmentStatus 投资状态
type InvestmentStatus string

const (
	InvestmentStatusCompleted InvestmentStatus = "completed" // 已完成
	InvestmentStatusPending   InvestmentStatus = "pending"   // 处理中
)
