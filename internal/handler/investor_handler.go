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

type InvestorHandler struct {
	investmentLogic *logic.InvestmentLogic
	monitor         *event.Monitor
}

func NewInvestorHandler(db *gorm.DB, ledger *chain.Ledger, monitor *event.Monitor) *InvestorHandler {
	return &InvestorHandler{
		investmentLogic: logic.NewInvestmentLogic(db, ledger),
		monitor:         monitor,
	}
}

// RecordInvestment 记录投资
func (h *InvestorHandler) RecordInvestment(c *gin.Context) {
	var in logic.InvestmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	userId, _ := middleware.CurrentUser(c)
	investment, err := h.investmentLogic.RecordInvestment(userId, &in)
	if err != nil {
		respondError(c, err)
		return
	}

	h.monitor.Publish(model.EventInvestmentRecorded, investment.ProjectId, userId, investment.TxHash, gin.H{
		"amount": investment.Amount,
		"tokens": investment.Tokens,
	})

	c.JSON(http.StatusCreated, investment)
}

// GetPortfolio 获取投资人持仓（本人或管理员）
func (h *InvestorHandler) GetPortfolio(c *gin.Context) {
	investorId, ok := requireSelfOrAdminInvestor(c)
	if !ok {
		return
	}

	holdings, err := h.investmentLogic.GetPortfolio(investorId)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, holdings)
}

// GetTransactions 获取投资人交易流水（本人或管理员）
func (h *InvestorHandler) GetTransactions(c *gin.Context) {
	investorId, ok := requireSelfOrAdminInvestor(c)
	if !ok {
		return
	}

	transactions, err := h.investmentLogic.GetTransactions(investorId)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// requireSelfOrAdminInvestor 校验路径中的投资人ID是本人或操作者是管理员
func requireSelfOrAdminInvestor(c *gin.Context) (int64, bool) {
	investorId, err := strconv.ParseInt(c.Param("investorId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "无效的投资人ID"})
		return 0, false
	}

	userId, role := middleware.CurrentUser(c)
	if investorId != userId && role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "不能访问其他投资人的数据"})
		return 0, false
	}
	return investorId, true
}
