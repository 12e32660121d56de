package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/fis/internal/logic"
	"github.com/blues/fis/internal/middleware"
	"github.com/blues/fis/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type IssuerHandler struct {
	submissionLogic *logic.SubmissionLogic
	projectLogic    *logic.ProjectLogic
	summaryLogic    *logic.SummaryLogic
	authLogic       *logic.AuthLogic
}

func NewIssuerHandler(db *gorm.DB) *IssuerHandler {
	return &IssuerHandler{
		submissionLogic: logic.NewSubmissionLogic(db),
		projectLogic:    logic.NewProjectLogic(db),
		summaryLogic:    logic.NewSummaryLogic(db),
		authLogic:       logic.NewAuthLogic(db),
	}
}

// CreateSubmission 发行方提交项目申请
func (h *IssuerHandler) CreateSubmission(c *gin.Context) {
	var in logic.SubmissionInput
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

	submission, err := h.submissionLogic.CreateSubmission(issuer, &in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// ListMySubmissions 发行方查看自己的申请列表
func (h *IssuerHandler) ListMySubmissions(c *gin.Context) {
	userId, _ := middleware.CurrentUser(c)

	submissions, err := h.submissionLogic.ListByIssuer(userId)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

// GetSummary 发行方汇总指标（本人或管理员）
func (h *IssuerHandler) GetSummary(c *gin.Context) {
	issuerId, ok := h.requireSelfOrAdmin(c)
	if !ok {
		return
	}

	summary, err := h.summaryLogic.GetIssuerSummary(issuerId)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListProjects 发行方项目列表（本人或管理员）
func (h *IssuerHandler) ListProjects(c *gin.Context) {
	issuerId, ok := h.requireSelfOrAdmin(c)
	if !ok {
		return
	}

	projects, err := h.projectLogic.GetProjects(logic.ProjectFilter{IssuerId: issuerId})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, projects)
}

// requireSelfOrAdmin 校验路径中的发行方ID是本人或操作者是管理员
func (h *IssuerHandler) requireSelfOrAdmin(c *gin.Context) (int64, bool) {
	issuerId, err := strconv.ParseInt(c.Param("issuerId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "无效的发行方ID"})
		return 0, false
	}

	userId, role := middleware.CurrentUser(c)
	if issuerId != userId && role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "不能访问其他发行方的数据"})
		return 0, false
	}
	return issuerId, true
}
