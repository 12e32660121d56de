package model

import (
	"time"
)

// MilestoneModel 项目里程碑
//
// 里程碑有两条正交的状态轴：施工状态（status）和凭证状态（proof_status）。
// 状态迁移由 logic 层的守卫控制，completed/approved 为终态。
type MilestoneModel struct {
	Id        string    `json:"id" gorm:"primaryKey"` // UUID
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ProjectId int64  `json:"projectId" gorm:"not null;index"`
	Name      string `json:"name" gorm:"not null"`
	SortOrder int    `json:"sortOrder" gorm:"default:0"`

	Status     MilestoneStatus `json:"status" gorm:"default:'pending'"`
	TargetDate *time.Time      `json:"date"`

	// 完成后释放的托管资金比例（占项目总募资，0-100）
	EscrowRelease *float64 `json:"escrowRelease"`
	Notes         string   `json:"notes" gorm:"type:text"`

	// 凭证信息
	ProofStatus ProofStatus           `json:"proofStatus" gorm:"default:'not-submitted'"`
	LastProofAt *time.Time            `json:"lastProofAt"`
	ProofNotes  string                `json:"proofNotes" gorm:"type:text"`
	Proofs      []MilestoneProofModel `json:"proofUploads" gorm:"foreignKey:MilestoneId"`
}

// TableName 自定义表名
func (MilestoneModel) TableName() string {
	return "milestone"
}

// MilestoneStatus 里程碑施工状态
type MilestoneStatus string

const (
	MilestoneStatusPending    MilestoneStatus = "pending"     // 待开始
	MilestoneStatusInProgress MilestoneStatus = "in-progress" // 进行中
	MilestoneStatusCompleted  MilestoneStatus = "completed"   // 已完成
)

// ProofStatus 里程碑凭证状态
type ProofStatus string

const (
	ProofStatusNotSubmitted ProofStatus = "not-submitted" // 未提交
	ProofStatusSubmitted    ProofStatus = "submitted"     // 待审核
	ProofStatusApproved     ProofStatus = "approved"      // 审核通过
	ProofStatusRejected     ProofStatus = "rejected"      // 审核驳回
)

// MilestoneProofModel 里程碑完成凭证（只追加，创建后不可变）
type MilestoneProofModel struct {
	Id          string    `json:"id" gorm:"primaryKey"` // UUID
	MilestoneId string    `json:"milestoneId" gorm:"not null;index"`
	Label       string    `json:"label" gorm:"not null"`
	FileName    string    `json:"fileName" gorm:"not null"`
	SizeBytes   *int64    `json:"sizeBytes"`
	PreviewUrl  string    `json:"previewUrl"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// TableName 自定义表名
func (MilestoneProofModel) TableName() string {
	return "milestone_proof"
}
