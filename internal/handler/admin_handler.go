package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/fis/internal/event"
	"github.com/blues/fis/internal/logic"
	"github.com/blues/fis/internal/middleware"
	"github.com/blues/fis/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminHandler struct {
	submissionLogic *logic.SubmissionLogic
	summaryLogic    *logic.SummaryLogic
	monitor         *event.Monitor
}

func NewAdminHandler(db *gorm.DB, monitor *event.Monitor) *AdminHandler {
	return &AdminHandler{
		submissionLogic: logic.NewSubmissionLogic(db),
		summaryLogic:    logic.NewSummaryLogic(db),
		monitor:         monitor,
	}
}

// GetSummary 平台汇总指标
func (h *AdminHandler) GetSummary(c *gin.Context) {
	summary, err := h.summaryLogic.GetAdminSummary()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListSubmissions 全部项目申请
func (h *AdminHandler) ListSubmissions(c *gin.Context) {
	submissions, err := h.submissionLogic.ListAll()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

// ApproveSubmission 审批通过并派生项目
func (h *AdminHandler) ApproveSubmission(c *gin.Context) {
	id, ok := parseSubmissionId(c)
	if !ok {
		return
	}

	submission, project, err := h.submissionLogic.Approve(id)
	if err != nil {
		respondError(c, err)
		return
	}

	userId, _ := middleware.CurrentUser(c)
	h.monitor.Publish(model.EventSubmissionApproved, project.Id, userId, "", gin.H{
		"submissionId": submission.Id,
	})

	c.JSON(http.StatusOK, gin.H{
		"submission": submission,
		"project":    project,
	})
}

// RejectSubmission 驳回申请
func (h *AdminHandler) RejectSubmission(c *gin.Context) {
	id, ok := parseSubmissionId(c)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// 驳回理由可选，请求体可以为空
	_ = c.ShouldBindJSON(&req)

	submission, err := h.submissionLogic.Reject(id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	userId, _ := middleware.CurrentUser(c)
	h.monitor.Publish(model.EventSubmissionRejected, 0, userId, "", gin.H{
		"submissionId": submission.Id,
		"reason":       submission.RejectionReason,
	})

	c.JSON(http.StatusOK, submission)
}

// parseSubmissionId 解析路径中的申请ID，失败时直接写400响应
func parseSubmissionId(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("submissionId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "无效的申请ID"})
		return 0, false
	}
	return id, true
}
