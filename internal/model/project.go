package model

import (
	"time"
)

// ProjectModel 基础设施投资项目
type ProjectModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// 基本信息
	Name        string `json:"name" gorm:"not null"`
	Location    string `json:"location" gorm:"not null"`
	Category    string `json:"category" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	ImageURL    string `json:"image"`

	// 募资信息
	FundingTarget float64 `json:"fundingTarget" gorm:"not null"`
	FundingRaised float64 `json:"fundingRaised" gorm:"default:0"`
	Roi           float64 `json:"roi" gorm:"default:0"`
	Tenure        int     `json:"tenure" gorm:"not null"` // 年
	TokenPrice    float64 `json:"tokenPrice" gorm:"not null"`
	RiskScore     int     `json:"riskScore" gorm:"default:0"` // 0-100

	// 发行方信息
	IssuerId       int64  `json:"issuerId" gorm:"not null;index"`
	IssuerName     string `json:"issuerName"`
	IssuerVerified bool   `json:"issuerVerified" gorm:"default:false"`

	// 状态
	Status ProjectStatus `json:"status" gorm:"default:'active'"`

	// 关联
	Milestones []MilestoneModel `json:"milestones,omitempty" gorm:"foreignKey:ProjectId"`
}

// TableName 自定义表名
func (ProjectModel) TableName() string {
	return "project"
}

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"    // 募资中
	ProjectStatusCompleted ProjectStatus = "completed" // 已完成
	ProjectStatusPending   ProjectStatus = "pending"   // 待开始
)
