package logic

import (
	"net/http"
	"strings"
	"testing"

	"github.com/blues/fis/internal/chain"
	"github.com/blues/fis/internal/model"
	"gorm.io/gorm"
)

func newTestInvestor(t *testing.T, db *gorm.DB, email string) *model.UserModel {
	t.Helper()
	investor := &model.UserModel{
		Name:         "Ravi Investor",
		Email:        email,
		PasswordHash: "x",
		Role:         model.RoleInvestor,
		KycStatus:    model.KycStatusVerified,
	}
	if err := db.Create(investor).Error; err != nil {
		t.Fatalf("Failed to create investor: %v", err)
	}
	return investor
}

func fundingRaised(t *testing.T, db *gorm.DB, projectId int64) float64 {
	t.Helper()
	var project model.ProjectModel
	if err := db.First(&project, projectId).Error; err != nil {
		t.Fatalf("Failed to load project: %v", err)
	}
	return project.FundingRaised
}

func TestRecordInvestment(t *testing.T) {
	db := newTestDB(t)
	issuer := newTestIssuer(t, db)
	project := newActiveProject(t, db, issuer) // fundingTarget 1000000, roi 8, tenure 5
	investor := newTestInvestor(t, db, "ravi@example.com")
	l := NewInvestmentLogic(db, chain.NewLedger())

	investment, err := l.RecordInvestment(investor.Id, &InvestmentInput{
		ProjectId:     project.Id,
		Amount:        1000,
		Tokens:        10,
		PaymentMethod: "upi",
	})
	if err != nil {
		t.Fatalf("Failed to record investment: %v", err)
	}

	if investment.Status != model.InvestmentStatusCompleted {
		t.Errorf("Expected status completed, got %s", investment.Status)
	}
	if !strings.HasPrefix(investment.TxHash, "0x") || len(investment.TxHash) != 66 {
		t.Errorf("Expected simulated tx hash, got %q", investment.TxHash)
	}
	if investment.ExpectedPayout != 1080 {
		t.Errorf("Expected payout 1080, got %f", investment.ExpectedPayout)
	}
	if investment.MaturityDate.IsZero() {
		t.Error("Expected maturity date to be set")
	}
	if got := fundingRaised(t, db, project.Id); got != 1000 {
		t.Errorf("Expected fundingRaised 1000, got %f", got)
	}

	// 募资进度只增不减
	if _, err := l.RecordInvestment(investor.Id, &InvestmentInput{ProjectId: project.Id, Amount: 500, Tokens: 5}); err != nil {
		t.Fatalf("Failed to record second investment: %v", err)
	}
	if got := fundingRaised(t, db, project.Id); got != 1500 {
		t.Errorf("Expected fundingRaised 1500, got %f", got)
	}
}

func TestRecordInvestmentValidation(t *testing.T) {
	db := newTestDB(t)
	issuer := newTestIssuer(t, db)
	project := newActiveProject(t, db, issuer)
	investor := newTestInvestor(t, db, "ravi@example.com")
	l := NewInvestmentLogic(db, chain.NewLedger())

	tests := []struct {
		name       string
		in         *InvestmentInput
		wantStatus int
	}{
		{name: "zero amount", in: &InvestmentInput{ProjectId: project.Id, Amount: 0, Tokens: 1}, wantStatus: http.StatusBadRequest},
		{name: "negative amount", in: &InvestmentInput{ProjectId: project.Id, Amount: -10, Tokens: 1}, wantStatus: http.StatusBadRequest},
		{name: "zero tokens", in: &InvestmentInput{ProjectId: project.Id, Amount: 100, Tokens: 0}, wantStatus: http.StatusBadRequest},
		{name: "unknown project", in: &InvestmentInput{ProjectId: 99999, Amount: 100, Tokens: 1}, wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.RecordInvestment(investor.Id, tt.in)
			if e := AsError(err); e == nil || e.Status != tt.wantStatus {
				t.Errorf("Expected %d, got %v", tt.wantStatus, err)
			}
		})
	}

	// 已结束的项目不接受投资
	if err := db.Model(&model.ProjectModel{}).Where("id = ?", project.Id).
		Update("status", model.ProjectStatusCompleted).Error; err != nil {
		t.Fatalf("Failed to close project: %v", err)
	}
	_, err := l.RecordInvestment(investor.Id, &InvestmentInput{ProjectId: project.Id, Amount: 100, Tokens: 1})
	if e := AsError(err); e == nil || e.Status != http.StatusConflict {
		t.Errorf("Expected 409 for non-active project, got %v", err)
	}
}

func TestRecordInvestmentOverTarget(t *testing.T) {
	db := newTestDB(t)
	issuer := newTestIssuer(t, db)
	project := newActiveProject(t, db, issuer)
	investor := newTestInvestor(t, db, "ravi@example.com")
	l := NewInvestmentLogic(db, chain.NewLedger())

	// 先投到只剩100的额度
	if err := db.Model(&model.ProjectModel{}).Where("id = ?", project.Id).
		Update("funding_raised", project.FundingTarget-100).Error; err != nil {
		t.Fatalf("Failed to seed funding: %v", err)
	}

	_, err := l.RecordInvestment(investor.Id, &InvestmentInput{ProjectId: project.Id, Amount: 200, Tokens: 2})
	if e := AsError(err); e == nil || e.Status != http.StatusConflict {
		t.Errorf("Expected 409 for over-target investment, got %v", err)
	}

	// 越界投资不留下任何痕迹
	if got := fundingRaised(t, db, project.Id); got != project.FundingTarget-100 {
		t.Errorf("Expected fundingRaised unchanged, got %f", got)
	}
	var count int64
	db.Model(&model.InvestmentModel{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no investment records, got %d", count)
	}

	// 恰好用满剩余额度是允许的
	if _, err := l.RecordInvestment(investor.Id, &InvestmentInput{ProjectId: project.Id, Amount: 100, Tokens: 1}); err != nil {
		t.Fatalf("Failed to invest remaining amount: %v", err)
	}
	if got := fundingRaised(t, db, project.Id); got != project.FundingTarget {
		t.Errorf("Expected fundingRaised at target, got %f", got)
	}
}

func TestGetPortfolio(t *testing.T) {
	db := newTestDB(t)
	issuer := newTestIssuer(t, db)
	project := newActiveProject(t, db, issuer)
	investor := newTestInvestor(t, db, "ravi@example.com")
	other := newTestInvestor(t, db, "other@example.com")
	l := NewInvestmentLogic(db, chain.NewLedger())

	for _, amount := range []float64{1000, 500} {
		if _, err := l.RecordInvestment(investor.Id, &InvestmentInput{ProjectId: project.Id, Amount: amount, Tokens: amount / 100}); err != nil {
			t.Fatalf("Failed to record investment: %v", err)
		}
	}
	if _, err := l.RecordInvestment(other.Id, &InvestmentInput{ProjectId: project.Id, Amount: 300, Tokens: 3}); err != nil {
		t.Fatalf("Failed to record other investment: %v", err)
	}

	holdings, err := l.GetPortfolio(investor.Id)
	if err != nil {
		t.Fatalf("Failed to get portfolio: %v", err)
	}
	if len(holdings) != 1 {
		t.Fatalf("Expected 1 holding, got %d", len(holdings))
	}
	h := holdings[0]
	if h.ProjectId != project.Id || h.ProjectName != project.Name {
		t.Errorf("Unexpected holding project: %+v", h)
	}
	if h.Invested != 1500 {
		t.Errorf("Expected invested 1500, got %f", h.Invested)
	}
	if h.Tokens != 15 {
		t.Errorf("Expected 15 tokens, got %f", h.Tokens)
	}
	if h.ExpectedPayout != 1620 { // 1500 * 1.08
		t.Errorf("Expected payout 1620, got %f", h.ExpectedPayout)
	}

	// 无持仓返回空列表而不是nil
	empty, err := l.GetPortfolio(99999)
	if err != nil {
		t.Fatalf("Failed to get empty portfolio: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("Expected empty slice, got %v", empty)
	}
}

func TestGetTransactions(t *testing.T) {
	db := newTestDB(t)
	issuer := newTestIssuer(t, db)
	project := newActiveProject(t, db, issuer)
	investor := newTestInvestor(t, db, "ravi@example.com")
	l := NewInvestmentLogic(db, chain.NewLedger())

	if _, err := l.RecordInvestment(investor.Id, &InvestmentInput{ProjectId: project.Id, Amount: 1000, Tokens: 10}); err != nil {
		t.Fatalf("Failed to record investment: %v", err)
	}
	if _, err := l.RecordInvestment(investor.Id, &InvestmentInput{ProjectId: project.Id, Amount: 500, Tokens: 5}); err != nil {
		t.Fatalf("Failed to record investment: %v", err)
	}

	transactions, err := l.GetTransactions(investor.Id)
	if err != nil {
		t.Fatalf("Failed to get transactions: %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(transactions))
	}
	for _, tx := range transactions {
		if tx.Type != "buy" {
			t.Errorf("Expected type buy, got %s", tx.Type)
		}
		if tx.ProjectName != project.Name {
			t.Errorf("Expected project name %s, got %s", project.Name, tx.ProjectName)
		}
		if tx.Price != project.TokenPrice {
			t.Errorf("Expected price %f, got %f", project.TokenPrice, tx.Price)
		}
		if tx.TxHash == "" {
			t.Error("Expected tx hash on transaction")
		}
	}
}
