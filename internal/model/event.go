package model

import (
	"time"
)

// PlatformEventModel 平台审计事件
//
// 由 event 监控器异步落库，记录关键业务动作（审批、凭证、投资等）。
type PlatformEventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt"`

	EventType EventType `json:"eventType" gorm:"not null;index"`
	ProjectId int64     `json:"projectId" gorm:"index"`
	ActorId   int64     `json:"actorId"`
	TxHash    string    `json:"txHash"` // 模拟链上哈希（投资/托管释放事件）
	Data      string    `json:"data" gorm:"type:text"`
}

// TableName 自定义表名
func (PlatformEventModel) TableName() string {
	return "platform_event"
}

// EventType 审计事件类型
type EventType string

const (
	EventSubmissionApproved EventType = "submission_approved" // 申请审批通过
	EventSubmissionRejected EventType = "submission_rejected" // 申请被驳回
	EventProofSubmitted     EventType = "proof_submitted"     // 里程碑凭证提交
	EventMilestoneReviewed  EventType = "milestone_reviewed"  // 里程碑审核
	EventInvestmentRecorded EventType = "investment_recorded" // 投资记录创建
)
