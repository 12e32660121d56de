package logic

import (
	"fmt"
	"strings"

	"github.com/blues/fis/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectLogic 项目业务逻辑
type ProjectLogic struct {
	db *gorm.DB
}

// NewProjectLogic 创建项目业务逻辑
func NewProjectLogic(db *gorm.DB) *ProjectLogic {
	return &ProjectLogic{db: db}
}

// ProjectInput 直接创建项目的数据（发行方/管理员路径）
//
// 字段校验与申请路径共用同一套阈值，避免两套各自演化的校验逻辑。
type ProjectInput struct {
	Name          string           `json:"name"`
	Location      string           `json:"location"`
	Category      string           `json:"category"`
	Description   string           `json:"description"`
	FundingTarget float64          `json:"fundingTarget"`
	Roi           float64          `json:"roi"`
	Tenure        int              `json:"tenure"`
	TokenPrice    float64          `json:"tokenPrice"`
	RiskScore     int              `json:"riskScore"`
	ImageURL      string           `json:"image"`
	Milestones    []MilestoneInput `json:"milestones"`
}

// ProjectFilter 项目列表过滤条件
type ProjectFilter struct {
	Status   string
	Category string
	IssuerId int64
}

// CreateProject 直接创建项目
func (p *ProjectLogic) CreateProject(issuer *model.UserModel, in *ProjectInput) (*model.ProjectModel, error) {
	if err := p.validateProject(in); err != nil {
		return nil, err
	}

	issuerName := issuer.OrganizationName
	if issuerName == "" {
		issuerName = issuer.Name
	}

	project := &model.ProjectModel{
		Name:           strings.TrimSpace(in.Name),
		Location:       strings.TrimSpace(in.Location),
		Category:       strings.TrimSpace(in.Category),
		Description:    strings.TrimSpace(in.Description),
		ImageURL:       in.ImageURL,
		FundingTarget:  in.FundingTarget,
		FundingRaised:  0,
		Roi:            in.Roi,
		Tenure:         in.Tenure,
		TokenPrice:     in.TokenPrice,
		RiskScore:      in.RiskScore,
		IssuerId:       issuer.Id,
		IssuerName:     issuerName,
		IssuerVerified: issuer.KycStatus == model.KycStatusVerified,
		Status:         model.ProjectStatusActive,
	}

	for i, m := range in.Milestones {
		project.Milestones = append(project.Milestones, model.MilestoneModel{
			Id:            uuid.NewString(),
			Name:          strings.TrimSpace(m.Name),
			SortOrder:     i,
			Status:        model.MilestoneStatusPending,
			TargetDate:    m.TargetDate,
			EscrowRelease: m.EscrowRelease,
			Notes:         m.Notes,
			ProofStatus:   model.ProofStatusNotSubmitted,
		})
	}

	if err := p.db.Create(project).Error; err != nil {
		return nil, fmt.Errorf("创建项目失败: %w", err)
	}

	return project, nil
}

// GetProjects 获取项目列表（新→旧）
func (p *ProjectLogic) GetProjects(filter ProjectFilter) ([]model.ProjectModel, error) {
	query := p.db.Preload("Milestones", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Preload("Milestones.Proofs")

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.IssuerId > 0 {
		query = query.Where("issuer_id = ?", filter.IssuerId)
	}

	var projects []model.ProjectModel
	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("获取项目列表失败: %w", err)
	}
	return projects, nil
}

// GetProject 获取项目详情
func (p *ProjectLogic) GetProject(id int64) (*model.ProjectModel, error) {
	var project model.ProjectModel
	err := p.db.Preload("Milestones", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Preload("Milestones.Proofs", func(db *gorm.DB) *gorm.DB {
		return db.Order("uploaded_at ASC")
	}).First(&project, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound("项目不存在")
		}
		return nil, fmt.Errorf("获取项目详情失败: %w", err)
	}
	return &project, nil
}

// UpdateProject 更新项目基础字段
//
// 仅项目所属发行方或管理员可操作；募资进度和状态不在可更新范围内。
func (p *ProjectLogic) UpdateProject(id, actorId int64, role model.UserRole, updates map[string]interface{}) (*model.ProjectModel, error) {
	project, err := p.GetProject(id)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrAdmin(project, actorId, role); err != nil {
		return nil, err
	}

	// 只允许更新特定字段
	allowedFields := []string{"name", "location", "category", "description", "image_url", "roi", "token_price", "risk_score"}
	for key := range updates {
		if !contains(allowedFields, key) {
			delete(updates, key)
		}
	}
	if len(updates) == 0 {
		return nil, ErrValidation("没有要更新的字段")
	}

	if desc, ok := updates["description"].(string); ok && runeLen(desc) < 20 {
		return nil, ErrValidation("项目描述至少20个字符")
	}

	if err := p.db.Model(&model.ProjectModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新项目失败: %w", err)
	}

	return p.GetProject(id)
}

// validateProject 校验项目数据（与申请路径同一套阈值）
func (p *ProjectLogic) validateProject(in *ProjectInput) error {
	submissionView := &SubmissionInput{
		Name:          in.Name,
		Category:      in.Category,
		Location:      in.Location,
		Description:   in.Description,
		FundingTarget: in.FundingTarget,
		Roi:           in.Roi,
		Tenure:        in.Tenure,
		TokenPrice:    in.TokenPrice,
		Milestones:    in.Milestones,
	}
	if err := ValidateSubmission(submissionView); err != nil {
		return err
	}
	if in.RiskScore < 0 || in.RiskScore > 100 {
		return ErrValidation("风险评分必须在0-100之间")
	}
	return nil
}
