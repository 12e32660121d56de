package logic

import (
	"fmt"
	"strings"
	"time"

	"github.com/blues/fis/internal/chain"
	"github.com/blues/fis/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MilestoneLogic 里程碑业务逻辑
//
// 里程碑状态机有两条轴：
//
//	status:      pending → in-progress → completed
//	proofStatus: not-submitted → submitted → approved | rejected
//
// 发行方提交凭证推动 in-progress/submitted，管理员审核推动
// completed/approved 或回到 in-progress/rejected。completed 为终态，
// 之后的再次提交或再次审核一律返回状态冲突。
type MilestoneLogic struct {
	db     *gorm.DB
	ledger *chain.Ledger
}

// NewMilestoneLogic 创建里程碑业务逻辑
func NewMilestoneLogic(db *gorm.DB, ledger *chain.Ledger) *MilestoneLogic {
	return &MilestoneLogic{db: db, ledger: ledger}
}

// MilestoneCreateInput 新增里程碑数据
type MilestoneCreateInput struct {
	Name          string     `json:"name"`
	TargetDate    *time.Time `json:"date"`
	EscrowRelease *float64   `json:"escrowRelease"`
	Notes         string     `json:"notes"`
}

// ProofFileInput 凭证文件
type ProofFileInput struct {
	Label      string `json:"label"`
	FileName   string `json:"fileName"`
	SizeBytes  *int64 `json:"sizeBytes"`
	PreviewUrl string `json:"previewUrl"`
}

// ProofSubmission 凭证提交请求
type ProofSubmission struct {
	Files []ProofFileInput `json:"files"`
	Notes string           `json:"notes"`
}

// ReviewInput 审核请求
type ReviewInput struct {
	Decision string `json:"decision"` // approved | rejected
	Notes    string `json:"notes"`
}

// AddMilestone 为项目新增里程碑
//
// 仅项目所属发行方或管理员可操作。新增后的托管释放比例总和不得超过100。
func (m *MilestoneLogic) AddMilestone(projectId, actorId int64, role model.UserRole, in *MilestoneCreateInput) (*model.MilestoneModel, error) {
	project, err := m.loadProject(projectId)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrAdmin(project, actorId, role); err != nil {
		return nil, err
	}

	if runeLen(in.Name) < 2 {
		return nil, ErrValidation("里程碑名称至少2个字符")
	}
	if in.EscrowRelease != nil {
		if *in.EscrowRelease < 0 || *in.EscrowRelease > 100 {
			return nil, ErrValidation("托管释放比例必须在0-100之间")
		}
		var sum float64
		for _, existing := range project.Milestones {
			if existing.EscrowRelease != nil {
				sum += *existing.EscrowRelease
			}
		}
		if sum+*in.EscrowRelease > 100.01 {
			return nil, ErrConflict("托管释放比例总和不能超过100")
		}
	}

	milestone := &model.MilestoneModel{
		Id:            uuid.NewString(),
		ProjectId:     project.Id,
		Name:          strings.TrimSpace(in.Name),
		SortOrder:     len(project.Milestones),
		Status:        model.MilestoneStatusPending,
		TargetDate:    in.TargetDate,
		EscrowRelease: in.EscrowRelease,
		Notes:         in.Notes,
		ProofStatus:   model.ProofStatusNotSubmitted,
	}

	if err := m.db.Create(milestone).Error; err != nil {
		return nil, fmt.Errorf("创建里程碑失败: %w", err)
	}

	return milestone, nil
}

// UpdateMilestone 更新里程碑基础字段
//
// 只允许更新白名单字段，状态迁移必须走 SubmitProof / Review。
func (m *MilestoneLogic) UpdateMilestone(projectId int64, milestoneId string, actorId int64, role model.UserRole, updates map[string]interface{}) (*model.MilestoneModel, error) {
	project, milestone, err := m.loadProjectMilestone(projectId, milestoneId)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrAdmin(project, actorId, role); err != nil {
		return nil, err
	}

	// 只允许更新特定字段
	allowedFields := []string{"name", "target_date", "escrow_release", "notes"}
	for key := range updates {
		if !contains(allowedFields, key) {
			delete(updates, key)
		}
	}
	if len(updates) == 0 {
		return nil, ErrValidation("没有要更新的字段")
	}

	// 改动释放比例时重新校验范围和总和，与新增里程碑同一套约束
	if v, ok := updates["escrow_release"]; ok {
		release, ok := v.(float64)
		if !ok {
			return nil, ErrValidation("托管释放比例必须是数字")
		}
		if release < 0 || release > 100 {
			return nil, ErrValidation("托管释放比例必须在0-100之间")
		}
		var sum float64
		for _, existing := range project.Milestones {
			if existing.Id == milestone.Id {
				continue
			}
			if existing.EscrowRelease != nil {
				sum += *existing.EscrowRelease
			}
		}
		if sum+release > 100.01 {
			return nil, ErrConflict("托管释放比例总和不能超过100")
		}
	}

	if err := m.db.Model(milestone).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新里程碑失败: %w", err)
	}

	return m.reload(milestone.Id)
}

// SubmitProof 提交里程碑完成凭证
//
// 迁移到 in-progress/submitted；凭证文件只追加。已完成的里程碑拒绝再次提交。
func (m *MilestoneLogic) SubmitProof(projectId int64, milestoneId string, actorId int64, role model.UserRole, in *ProofSubmission) (*model.MilestoneModel, error) {
	project, milestone, err := m.loadProjectMilestone(projectId, milestoneId)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrAdmin(project, actorId, role); err != nil {
		return nil, err
	}

	if len(in.Files) == 0 {
		return nil, ErrValidation("至少需要一个凭证文件")
	}
	for i, f := range in.Files {
		if strings.TrimSpace(f.Label) == "" || strings.TrimSpace(f.FileName) == "" {
			return nil, ErrValidation(fmt.Sprintf("第%d个凭证文件缺少标签或文件名", i+1))
		}
	}

	// 终态守卫：已完成/已通过的里程碑不可重新提交
	if milestone.Status == model.MilestoneStatusCompleted || milestone.ProofStatus == model.ProofStatusApproved {
		return nil, ErrConflict("里程碑已完成，不能再提交凭证")
	}

	now := time.Now()
	err = m.db.Transaction(func(tx *gorm.DB) error {
		for _, f := range in.Files {
			proof := model.MilestoneProofModel{
				Id:          uuid.NewString(),
				MilestoneId: milestone.Id,
				Label:       f.Label,
				FileName:    f.FileName,
				SizeBytes:   f.SizeBytes,
				PreviewUrl:  f.PreviewUrl,
				UploadedAt:  now,
			}
			if err := tx.Create(&proof).Error; err != nil {
				return fmt.Errorf("保存凭证文件失败: %w", err)
			}
		}

		updates := map[string]interface{}{
			"status":        model.MilestoneStatusInProgress,
			"proof_status":  model.ProofStatusSubmitted,
			"last_proof_at": now,
		}
		if in.Notes != "" {
			updates["proof_notes"] = in.Notes
		}
		if err := tx.Model(milestone).Updates(updates).Error; err != nil {
			return fmt.Errorf("更新里程碑状态失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return m.reload(milestone.Id)
}

// Review 管理员审核里程碑凭证
//
// approved → completed/approved（终态），并生成托管释放回执；
// rejected → in-progress/rejected，发行方可重新提交。
// 只有处于 submitted 状态的凭证可以被审核。
// 返回更新后的里程碑和释放回执哈希（驳回时为空）。
func (m *MilestoneLogic) Review(projectId int64, milestoneId string, in *ReviewInput) (*model.MilestoneModel, string, error) {
	project, milestone, err := m.loadProjectMilestone(projectId, milestoneId)
	if err != nil {
		return nil, "", err
	}

	if in.Decision != "approved" && in.Decision != "rejected" {
		return nil, "", ErrValidation("审核结果必须是 approved 或 rejected")
	}

	if milestone.Status == model.MilestoneStatusCompleted || milestone.ProofStatus == model.ProofStatusApproved {
		return nil, "", ErrConflict("里程碑已完成，不能再审核")
	}
	if milestone.ProofStatus != model.ProofStatusSubmitted {
		return nil, "", ErrConflict("里程碑凭证不在待审核状态")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"last_proof_at": now,
	}
	if in.Notes != "" {
		updates["proof_notes"] = in.Notes
	}

	approved := in.Decision == "approved"
	if approved {
		updates["status"] = model.MilestoneStatusCompleted
		updates["proof_status"] = model.ProofStatusApproved
	} else {
		updates["status"] = model.MilestoneStatusInProgress
		updates["proof_status"] = model.ProofStatusRejected
	}

	// 释放回执与状态写入同一事务，回执只为真正完成的里程碑生成
	var releaseTxHash string
	err = m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(milestone).Updates(updates).Error; err != nil {
			return fmt.Errorf("更新里程碑状态失败: %w", err)
		}

		if approved && milestone.EscrowRelease != nil && *milestone.EscrowRelease > 0 {
			amount := project.FundingRaised * *milestone.EscrowRelease / 100
			txHash, err := m.ledger.RecordEscrowRelease(project.Id, amount)
			if err != nil {
				return fmt.Errorf("生成托管释放回执失败: %w", err)
			}
			releaseTxHash = txHash
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	updated, err := m.reload(milestone.Id)
	if err != nil {
		return nil, "", err
	}
	return updated, releaseTxHash, nil
}

// loadProject 加载项目及其里程碑
func (m *MilestoneLogic) loadProject(projectId int64) (*model.ProjectModel, error) {
	var project model.ProjectModel
	err := m.db.Preload("Milestones", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).First(&project, projectId).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound("项目不存在")
		}
		return nil, fmt.Errorf("获取项目失败: %w", err)
	}
	return &project, nil
}

// loadProjectMilestone 加载项目和指定里程碑
func (m *MilestoneLogic) loadProjectMilestone(projectId int64, milestoneId string) (*model.ProjectModel, *model.MilestoneModel, error) {
	project, err := m.loadProject(projectId)
	if err != nil {
		return nil, nil, err
	}
	for i := range project.Milestones {
		if project.Milestones[i].Id == milestoneId {
			return project, &project.Milestones[i], nil
		}
	}
	return nil, nil, ErrNotFound("里程碑不存在")
}

// reload 重新加载里程碑及其凭证
func (m *MilestoneLogic) reload(milestoneId string) (*model.MilestoneModel, error) {
	var milestone model.MilestoneModel
	err := m.db.Preload("Proofs", func(db *gorm.DB) *gorm.DB {
		return db.Order("uploaded_at ASC")
	}).First(&milestone, "id = ?", milestoneId).Error
	if err != nil {
		return nil, fmt.Errorf("获取里程碑失败: %w", err)
	}
	return &milestone, nil
}

// requireOwnerOrAdmin 校验操作者是项目所属发行方或管理员
func requireOwnerOrAdmin(project *model.ProjectModel, actorId int64, role model.UserRole) error {
	if role == model.RoleAdmin {
		return nil
	}
	if project.IssuerId != actorId {
		return ErrForbidden("只有项目所属发行方或管理员可以操作")
	}
	return nil
}

// contains 检查切片是否包含指定元素
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
