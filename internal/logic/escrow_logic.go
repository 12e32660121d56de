package logic

import (
	"github.com/blues/fis/internal/model"
	"gorm.io/gorm"
)

// EscrowLogic 托管资金展示口径
//
// 纯读侧派生：不落库、不缓存，每次读取都按已完成里程碑的释放比例
// 重新计算锁定/已释放金额。
type EscrowLogic struct {
	db *gorm.DB
}

// NewEscrowLogic 创建托管计算逻辑
func NewEscrowLogic(db *gorm.DB) *EscrowLogic {
	return &EscrowLogic{db: db}
}

// EscrowStatus 项目托管资金状态
type EscrowStatus struct {
	ProjectId       int64   `json:"projectId"`
	FundingRaised   float64 `json:"fundingRaised"`
	ReleasedPercent float64 `json:"releasedPercent"`
	ReleasedAmount  float64 `json:"releasedAmount"`
	LockedAmount    float64 `json:"lockedAmount"`
}

// GetEscrowStatus 计算项目的托管资金状态
func (e *EscrowLogic) GetEscrowStatus(projectId int64) (*EscrowStatus, error) {
	var project model.ProjectModel
	err := e.db.Preload("Milestones").First(&project, projectId).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound("项目不存在")
		}
		return nil, err
	}

	status := ComputeEscrow(&project)
	return status, nil
}

// ComputeEscrow 按里程碑完成情况派生托管金额
//
//	releasedPercent = Σ escrowRelease（status == completed）
//	releasedAmount  = fundingRaised * releasedPercent / 100
//	lockedAmount    = fundingRaised - releasedAmount（下限0）
func ComputeEscrow(project *model.ProjectModel) *EscrowStatus {
	var releasedPercent float64
	for _, m := range project.Milestones {
		if m.Status == model.MilestoneStatusCompleted && m.EscrowRelease != nil {
			releasedPercent += *m.EscrowRelease
		}
	}

	releasedAmount := project.FundingRaised * releasedPercent / 100
	lockedAmount := project.FundingRaised - releasedAmount
	if lockedAmount < 0 {
		lockedAmount = 0
	}

	return &EscrowStatus{
		ProjectId:       project.Id,
		FundingRaised:   project.FundingRaised,
		ReleasedPercent: releasedPercent,
		ReleasedAmount:  releasedAmount,
		LockedAmount:    lockedAmount,
	}
}
