package model

import (
	"time"
)

// SubmissionModel 发行方提交的项目申请
//
// 状态只允许 pending→approved 或 pending→rejected，由管理员审批。
// 审批通过时在同一事务里派生出 ProjectModel。
type SubmissionModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"submittedAt"` // 提交时间
	UpdatedAt time.Time `json:"updatedAt"`

	IssuerId   int64  `json:"issuerId" gorm:"not null;index"`
	IssuerName string `json:"issuerName"`

	Name          string  `json:"name" gorm:"not null"`
	Category      string  `json:"category" gorm:"not null"`
	Location      string  `json:"location" gorm:"not null"`
	Description   string  `json:"description" gorm:"type:text"`
	FundingTarget float64 `json:"fundingTarget" gorm:"not null"`
	Roi           float64 `json:"roi" gorm:"default:0"`
	Tenure        int     `json:"tenure" gorm:"not null"` // 年
	TokenPrice    float64 `json:"tokenPrice" gorm:"not null"`

	Status          SubmissionStatus `json:"status" gorm:"default:'pending'"`
	ApprovedAt      *time.Time       `json:"approvedAt"`
	RejectionReason string           `json:"rejectionReason"`

	// 关联
	Milestones []SubmissionMilestoneModel `json:"milestones" gorm:"foreignKey:SubmissionId"`
	Documents  []SubmissionDocumentModel  `json:"documents" gorm:"foreignKey:SubmissionId"`
}

// TableName 自定义表名
func (SubmissionModel) TableName() string {
	return "submission"
}

// SubmissionStatus 项目申请状态
type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"  // 待审批
	SubmissionStatusApproved SubmissionStatus = "approved" // 已通过
	SubmissionStatusRejected SubmissionStatus = "rejected" // 已驳回
)

// SubmissionMilestoneModel 申请中的里程碑计划
type SubmissionMilestoneModel struct {
	Id            string     `json:"id" gorm:"primaryKey"` // UUID
	SubmissionId  int64      `json:"submissionId" gorm:"not null;index"`
	Name          string     `json:"name" gorm:"not null"`
	SortOrder     int        `json:"sortOrder" gorm:"default:0"`
	TargetDate    *time.Time `json:"date"`
	EscrowRelease *float64   `json:"escrowRelease"`
	Notes         string     `json:"notes" gorm:"type:text"`
}

// TableName 自定义表名
func (SubmissionMilestoneModel) TableName() string {
	return "submission_milestone"
}

// SubmissionDocumentModel 申请材料清单
type SubmissionDocumentModel struct {
	Id           string `json:"id" gorm:"primaryKey"` // UUID
	SubmissionId int64  `json:"submissionId" gorm:"not null;index"`
	Label        string `json:"label" gorm:"not null"`
	Uploaded     bool   `json:"uploaded" gorm:"default:false"`
	FileName     string `json:"fileName"`
	SizeBytes    *int64 `json:"sizeBytes"`
	PreviewUrl   string `json:"previewUrl"`
	SortOrder    int    `json:"sortOrder" gorm:"default:0"`
}

// TableName 自定义表名
func (SubmissionDocumentModel) TableName() string {
	return "submission_document"
}
