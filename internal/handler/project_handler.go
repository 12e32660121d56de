package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/fis/internal/chain"
	"github.com/blues/fis/internal/event"
	"github.com/blues/fis/internal/logic"
	"github.com/blues/fis/internal/middleware"
	"github.com/blues/fis/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectLogic   *logic.ProjectLogic
	milestoneLogic *logic.MilestoneLogic
	escrowLogic    *logic.EscrowLogic
	authLogic      *logic.AuthLogic
	monitor        *event.Monitor
}

func NewProjectHandler(db *gorm.DB, ledger *chain.Ledger, monitor *event.Monitor) *ProjectHandler {
	return &ProjectHandler{
		projectLogic:   logic.NewProjectLogic(db),
		milestoneLogic: logic.NewMilestoneLogic(db, ledger),
		escrowLogic:    logic.NewEscrowLogic(db),
		authLogic:      logic.NewAuthLogic(db),
		monitor:        monitor,
	}
}

// GetProjects 获取项目列表
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	filter := logic.ProjectFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
	}
	if issuerId := c.Query("issuerId"); issuerId != "" {
		id, err := strconv.ParseInt(issuerId, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "无效的发行方ID"})
			return
		}
		filter.IssuerId = id
	}

	projects, err := h.projectLogic.GetProjects(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, projects)
}

// GetProject 获取单个项目详情
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, err := parseProjectId(c)
	if err != nil {
		return
	}

	project, err := h.projectLogic.GetProject(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// CreateProject 直接创建项目（发行方/管理员）
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var in logic.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	userId, _ := middleware.CurrentUser(c)
	issuer, err := h.authLogic.GetUser(userId)
	if err != nil {
		respondError(c, err)
		return
	}

	project, err := h.projectLogic.CreateProject(issuer, &in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// UpdateProject 更新项目
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, err := parseProjectId(c)
	if err != nil {
		return
	}

	// 只允许更新特定字段
	var updateData struct {
		Name        *string  `json:"name"`
		Location    *string  `json:"location"`
		Category    *string  `json:"category"`
		Description *string  `json:"description"`
		ImageURL    *string  `json:"image"`
		Roi         *float64 `json:"roi"`
		TokenPrice  *float64 `json:"tokenPrice"`
		RiskScore   *int     `json:"riskScore"`
	}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		respondBindError(c, err)
		return
	}

	updates := make(map[string]interface{})
	if updateData.Name != nil {
		updates["name"] = *updateData.Name
	}
	if updateData.Location != nil {
		updates["location"] = *updateData.Location
	}
	if updateData.Category != nil {
		updates["category"] = *updateData.Category
	}
	if updateData.Description != nil {
		updates["description"] = *updateData.Description
	}
	if updateData.ImageURL != nil {
		updates["image_url"] = *updateData.ImageURL
	}
	if updateData.Roi != nil {
		updates["roi"] = *updateData.Roi
	}
	if updateData.TokenPrice != nil {
		updates["token_price"] = *updateData.TokenPrice
	}
	if updateData.RiskScore != nil {
		updates["risk_score"] = *updateData.RiskScore
	}

	userId, role := middleware.CurrentUser(c)
	project, err := h.projectLogic.UpdateProject(id, userId, role, updates)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// AddMilestone 为项目新增里程碑
func (h *ProjectHandler) AddMilestone(c *gin.Context) {
	id, err := parseProjectId(c)
	if err != nil {
		return
	}

	var in logic.MilestoneCreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	userId, role := middleware.CurrentUser(c)
	milestone, err := h.milestoneLogic.AddMilestone(id, userId, role, &in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, milestone)
}

// UpdateMilestone 更新里程碑基础字段
func (h *ProjectHandler) UpdateMilestone(c *gin.Context) {
	id, err := parseProjectId(c)
	if err != nil {
		return
	}
	milestoneId := c.Param("milestoneId")

	var updateData struct {
		Name          *string  `json:"name"`
		EscrowRelease *float64 `json:"escrowRelease"`
		Notes         *string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		respondBindError(c, err)
		return
	}

	updates := make(map[string]interface{})
	if updateData.Name != nil {
		updates["name"] = *updateData.Name
	}
	if updateData.EscrowRelease != nil {
		updates["escrow_release"] = *updateData.EscrowRelease
	}
	if updateData.Notes != nil {
		updates["notes"] = *updateData.Notes
	}

	userId, role := middleware.CurrentUser(c)
	milestone, err := h.milestoneLogic.UpdateMilestone(id, milestoneId, userId, role, updates)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, milestone)
}

// SubmitProof 提交里程碑完成凭证
func (h *ProjectHandler) SubmitProof(c *gin.Context) {
	id, err := parseProjectId(c)
	if err != nil {
		return
	}
	milestoneId := c.Param("milestoneId")

	var in logic.ProofSubmission
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	userId, role := middleware.CurrentUser(c)
	milestone, err := h.milestoneLogic.SubmitProof(id, milestoneId, userId, role, &in)
	if err != nil {
		respondError(c, err)
		return
	}

	h.monitor.Publish(model.EventProofSubmitted, id, userId, "", gin.H{
		"milestoneId": milestone.Id,
		"proofStatus": milestone.ProofStatus,
		"files":       len(in.Files),
	})

	c.JSON(http.StatusCreated, milestone)
}

// ReviewProof 管理员审核里程碑凭证
func (h *ProjectHandler) ReviewProof(c *gin.Context) {
	id, err := parseProjectId(c)
	if err != nil {
		return
	}
	milestoneId := c.Param("milestoneId")

	var in logic.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	userId, _ := middleware.CurrentUser(c)
	milestone, releaseTxHash, err := h.milestoneLogic.Review(id, milestoneId, &in)
	if err != nil {
		respondError(c, err)
		return
	}

	h.monitor.Publish(model.EventMilestoneReviewed, id, userId, releaseTxHash, gin.H{
		"milestoneId": milestone.Id,
		"decision":    in.Decision,
		"status":      milestone.Status,
	})

	c.JSON(http.StatusOK, milestone)
}

// GetEscrowStatus 获取项目托管资金状态
func (h *ProjectHandler) GetEscrowStatus(c *gin.Context) {
	id, err := parseProjectId(c)
	if err != nil {
		return
	}

	status, err := h.escrowLogic.GetEscrowStatus(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// parseProjectId 解析路径中的项目ID，失败时直接写400响应
func parseProjectId(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("projectId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "无效的项目ID"})
		return 0, err
	}
	return id, nil
}
