package logic

import (
	"fmt"
	"math"

	"github.com/blues/fis/internal/model"
	"gorm.io/gorm"
)

// SummaryLogic 平台/发行方汇总统计
type SummaryLogic struct {
	db *gorm.DB
}

// NewSummaryLogic 创建统计业务逻辑
func NewSummaryLogic(db *gorm.DB) *SummaryLogic {
	return &SummaryLogic{db: db}
}

// AdminSummary 平台汇总指标
type AdminSummary struct {
	ActiveProjects     int64   `json:"activeProjects"`
	TotalFundingRaised float64 `json:"totalFundingRaised"`
	PendingApprovals   int64   `json:"pendingApprovals"`
	VerifiedIssuers    int64   `json:"verifiedIssuers"`
	TotalInvestors     int64   `json:"totalInvestors"`
}

// GetAdminSummary 获取平台汇总指标
func (s *SummaryLogic) GetAdminSummary() (*AdminSummary, error) {
	summary := &AdminSummary{}

	if err := s.db.Model(&model.ProjectModel{}).
		Where("status = ?", model.ProjectStatusActive).
		Count(&summary.ActiveProjects).Error; err != nil {
		return nil, fmt.Errorf("统计项目数量失败: %w", err)
	}

	if err := s.db.Model(&model.ProjectModel{}).
		Select("COALESCE(SUM(funding_raised), 0)").
		Scan(&summary.TotalFundingRaised).Error; err != nil {
		return nil, fmt.Errorf("统计募资总额失败: %w", err)
	}

	if err := s.db.Model(&model.SubmissionModel{}).
		Where("status = ?", model.SubmissionStatusPending).
		Count(&summary.PendingApprovals).Error; err != nil {
		return nil, fmt.Errorf("统计待审批申请失败: %w", err)
	}

	if err := s.db.Model(&model.UserModel{}).
		Where("role = ? AND kyc_status = ?", model.RoleIssuer, model.KycStatusVerified).
		Count(&summary.VerifiedIssuers).Error; err != nil {
		return nil, fmt.Errorf("统计已认证发行方失败: %w", err)
	}

	if err := s.db.Model(&model.InvestmentModel{}).
		Distinct("investor_id").
		Count(&summary.TotalInvestors).Error; err != nil {
		return nil, fmt.Errorf("统计投资人数量失败: %w", err)
	}

	return summary, nil
}

// IssuerSummary 发行方汇总指标
type IssuerSummary struct {
	IssuerId         int64   `json:"issuerId"`
	OrganizationName string  `json:"organizationName"`
	TotalFundsRaised float64 `json:"totalFundsRaised"`
	TotalInvestors   int64   `json:"totalInvestors"`
	ActiveProjects   int64   `json:"activeProjects"`
	AverageProgress  float64 `json:"averageProgress"` // 平均募资进度百分比
}

// GetIssuerSummary 获取发行方汇总指标
func (s *SummaryLogic) GetIssuerSummary(issuerId int64) (*IssuerSummary, error) {
	var projects []model.ProjectModel
	if err := s.db.Where("issuer_id = ?", issuerId).Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("获取发行方项目失败: %w", err)
	}

	summary := &IssuerSummary{IssuerId: issuerId}

	projectIds := make([]int64, 0, len(projects))
	var progressSum float64
	for _, p := range projects {
		projectIds = append(projectIds, p.Id)
		summary.TotalFundsRaised += p.FundingRaised
		if p.Status == model.ProjectStatusActive {
			summary.ActiveProjects++
		}
		if p.FundingTarget > 0 {
			progressSum += p.FundingRaised / p.FundingTarget * 100
		}
		if summary.OrganizationName == "" {
			summary.OrganizationName = p.IssuerName
		}
	}

	if len(projects) > 0 {
		summary.AverageProgress = math.Round(progressSum/float64(len(projects))*100) / 100

		if err := s.db.Model(&model.InvestmentModel{}).
			Where("project_id IN ?", projectIds).
			Distinct("investor_id").
			Count(&summary.TotalInvestors).Error; err != nil {
			return nil, fmt.Errorf("统计投资人数量失败: %w", err)
		}
	}

	return summary, nil
}
