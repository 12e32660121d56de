package logic

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/blues/fis/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubmissionLogic 项目申请业务逻辑
//
// 覆盖申请校验、pending→approved/rejected 状态机和审批通过后的项目派生。
// 审批和派生在同一事务中完成，派生失败则审批回滚。
type SubmissionLogic struct {
	db *gorm.DB
}

// NewSubmissionLogic 创建项目申请业务逻辑
func NewSubmissionLogic(db *gorm.DB) *SubmissionLogic {
	return &SubmissionLogic{db: db}
}

// SubmissionInput 发行方提交的申请数据
type SubmissionInput struct {
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	Location      string           `json:"location"`
	Description   string           `json:"description"`
	FundingTarget float64          `json:"fundingTarget"`
	Roi           float64          `json:"roi"`
	Tenure        int              `json:"tenure"`
	TokenPrice    float64          `json:"tokenPrice"`
	Milestones    []MilestoneInput `json:"milestones"`
	Documents     []DocumentInput  `json:"documents"`
}

// MilestoneInput 申请中的里程碑计划
type MilestoneInput struct {
	Name          string     `json:"name"`
	TargetDate    *time.Time `json:"date"`
	EscrowRelease *float64   `json:"escrowRelease"`
	Notes         string     `json:"notes"`
}

// DocumentInput 申请材料
type DocumentInput struct {
	Label      string `json:"label"`
	Uploaded   *bool  `json:"uploaded"`
	FileName   string `json:"fileName"`
	SizeBytes  *int64 `json:"sizeBytes"`
	PreviewUrl string `json:"previewUrl"`
}

// CreateSubmission 创建项目申请
func (s *SubmissionLogic) CreateSubmission(issuer *model.UserModel, in *SubmissionInput) (*model.SubmissionModel, error) {
	if err := ValidateSubmission(in); err != nil {
		return nil, err
	}

	issuerName := issuer.OrganizationName
	if issuerName == "" {
		issuerName = issuer.Name
	}

	submission := &model.SubmissionModel{
		IssuerId:      issuer.Id,
		IssuerName:    issuerName,
		Name:          strings.TrimSpace(in.Name),
		Category:      strings.TrimSpace(in.Category),
		Location:      strings.TrimSpace(in.Location),
		Description:   strings.TrimSpace(in.Description),
		FundingTarget: in.FundingTarget,
		Roi:           in.Roi,
		Tenure:        in.Tenure,
		TokenPrice:    in.TokenPrice,
		Status:        model.SubmissionStatusPending,
	}

	for i, m := range in.Milestones {
		submission.Milestones = append(submission.Milestones, model.SubmissionMilestoneModel{
			Id:            uuid.NewString(),
			Name:          strings.TrimSpace(m.Name),
			SortOrder:     i,
			TargetDate:    m.TargetDate,
			EscrowRelease: m.EscrowRelease,
			Notes:         m.Notes,
		})
	}

	for i, d := range in.Documents {
		uploaded := false
		if d.Uploaded != nil {
			uploaded = *d.Uploaded
		}
		submission.Documents = append(submission.Documents, model.SubmissionDocumentModel{
			Id:         uuid.NewString(),
			Label:      strings.TrimSpace(d.Label),
			Uploaded:   uploaded,
			FileName:   d.FileName,
			SizeBytes:  d.SizeBytes,
			PreviewUrl: d.PreviewUrl,
			SortOrder:  i,
		})
	}

	if err := s.db.Create(submission).Error; err != nil {
		return nil, fmt.Errorf("创建项目申请失败: %w", err)
	}

	return submission, nil
}

// GetSubmission 获取申请详情
func (s *SubmissionLogic) GetSubmission(id int64) (*model.SubmissionModel, error) {
	var submission model.SubmissionModel
	err := s.db.Preload("Milestones", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Preload("Documents", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).First(&submission, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound("项目申请不存在")
		}
		return nil, fmt.Errorf("获取项目申请失败: %w", err)
	}
	return &submission, nil
}

// ListByIssuer 获取发行方自己的申请列表（新→旧）
func (s *SubmissionLogic) ListByIssuer(issuerId int64) ([]model.SubmissionModel, error) {
	var submissions []model.SubmissionModel
	err := s.db.Preload("Milestones", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Preload("Documents").
		Where("issuer_id = ?", issuerId).
		Order("created_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, fmt.Errorf("获取申请列表失败: %w", err)
	}
	return submissions, nil
}

// ListAll 获取全部申请（管理员视角，新→旧）
func (s *SubmissionLogic) ListAll() ([]model.SubmissionModel, error) {
	var submissions []model.SubmissionModel
	err := s.db.Preload("Milestones", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Preload("Documents").
		Order("created_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, fmt.Errorf("获取申请列表失败: %w", err)
	}
	return submissions, nil
}

// Approve 审批通过并派生项目
//
// 状态迁移通过条件更新（WHERE status='pending'）完成，两个管理员并发审批
// 只会有一个成功。派生项目与状态更新在同一事务，任一失败整体回滚。
func (s *SubmissionLogic) Approve(id int64) (*model.SubmissionModel, *model.ProjectModel, error) {
	submission, err := s.GetSubmission(id)
	if err != nil {
		return nil, nil, err
	}

	var project *model.ProjectModel
	now := time.Now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.SubmissionModel{}).
			Where("id = ? AND status = ?", id, model.SubmissionStatusPending).
			Updates(map[string]interface{}{
				"status":      model.SubmissionStatusApproved,
				"approved_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("更新申请状态失败: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrConflict("项目申请已处理")
		}

		project = deriveProject(submission)
		if err := tx.Create(project).Error; err != nil {
			return fmt.Errorf("派生项目失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	submission.Status = model.SubmissionStatusApproved
	submission.ApprovedAt = &now
	return submission, project, nil
}

// Reject 驳回申请
func (s *SubmissionLogic) Reject(id int64, reason string) (*model.SubmissionModel, error) {
	submission, err := s.GetSubmission(id)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = "Rejected by admin"
	}

	result := s.db.Model(&model.SubmissionModel{}).
		Where("id = ? AND status = ?", id, model.SubmissionStatusPending).
		Updates(map[string]interface{}{
			"status":           model.SubmissionStatusRejected,
			"rejection_reason": reason,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("更新申请状态失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrConflict("项目申请已处理")
	}

	submission.Status = model.SubmissionStatusRejected
	submission.RejectionReason = reason
	return submission, nil
}

// 派生项目的固定风险评分基线
const derivedProjectRiskScore = 30

// deriveProject 由已通过的申请派生可投资项目
func deriveProject(submission *model.SubmissionModel) *model.ProjectModel {
	project := &model.ProjectModel{
		Name:           submission.Name,
		Category:       submission.Category,
		Location:       submission.Location,
		Description:    submission.Description,
		FundingTarget:  submission.FundingTarget,
		FundingRaised:  0,
		Roi:            submission.Roi,
		Tenure:         submission.Tenure,
		TokenPrice:     submission.TokenPrice,
		RiskScore:      derivedProjectRiskScore,
		IssuerId:       submission.IssuerId,
		IssuerName:     submission.IssuerName,
		IssuerVerified: true,
		Status:         model.ProjectStatusActive,
	}

	for i, m := range submission.Milestones {
		project.Milestones = append(project.Milestones, model.MilestoneModel{
			Id:            uuid.NewString(),
			Name:          m.Name,
			SortOrder:     i,
			Status:        model.MilestoneStatusPending,
			TargetDate:    m.TargetDate,
			EscrowRelease: m.EscrowRelease,
			Notes:         m.Notes,
			ProofStatus:   model.ProofStatusNotSubmitted,
		})
	}

	return project
}

// ValidateSubmission 校验申请数据
//
// 所有字段级阈值与托管释放比例之和必须为100的约束都在这里落地，
// 不合规的里程碑计划不会进入任何项目。
func ValidateSubmission(in *SubmissionInput) error {
	if runeLen(in.Name) < 3 {
		return ErrValidation("项目名称至少3个字符")
	}
	if runeLen(in.Category) < 3 {
		return ErrValidation("项目类别至少3个字符")
	}
	if runeLen(in.Location) < 3 {
		return ErrValidation("项目地点至少3个字符")
	}
	if runeLen(in.Description) < 20 {
		return ErrValidation("项目描述至少20个字符")
	}
	if in.FundingTarget <= 0 {
		return ErrValidation("目标金额必须大于0")
	}
	if in.Roi < 0 {
		return ErrValidation("收益率不能为负")
	}
	if in.Tenure <= 0 {
		return ErrValidation("期限必须大于0")
	}
	if in.TokenPrice <= 0 {
		return ErrValidation("代币单价必须大于0")
	}

	for i, m := range in.Milestones {
		if runeLen(m.Name) < 2 {
			return ErrValidation(fmt.Sprintf("第%d个里程碑名称至少2个字符", i+1))
		}
		if m.EscrowRelease != nil && (*m.EscrowRelease < 0 || *m.EscrowRelease > 100) {
			return ErrValidation(fmt.Sprintf("第%d个里程碑托管释放比例必须在0-100之间", i+1))
		}
	}

	if err := validateEscrowSchedule(in.Milestones); err != nil {
		return err
	}

	for i, d := range in.Documents {
		if strings.TrimSpace(d.Label) == "" {
			return ErrValidation(fmt.Sprintf("第%d个申请材料缺少标签", i+1))
		}
	}

	return nil
}

// runeLen 去空白后的字符数（多字节字符按1计）
func runeLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// validateEscrowSchedule 校验托管释放计划
//
// 只要有任一里程碑设置了释放比例，比例之和必须为100（容差0.01）。
func validateEscrowSchedule(milestones []MilestoneInput) error {
	var sum float64
	var scheduled bool
	for _, m := range milestones {
		if m.EscrowRelease != nil {
			scheduled = true
			sum += *m.EscrowRelease
		}
	}
	if scheduled && math.Abs(sum-100) > 0.01 {
		return ErrValidation(fmt.Sprintf("托管释放比例之和必须为100，当前为%.2f", sum))
	}
	return nil
}
