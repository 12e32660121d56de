package logic

import (
	"fmt"
	"time"

	"github.com/blues/fis/internal/chain"
	"github.com/blues/fis/internal/model"
	"gorm.io/gorm"
)

// InvestmentLogic 投资业务逻辑
//
// 投资记录与项目 funding_raised 的增量在同一事务内完成；
// 增量通过条件更新执行，募资进度只增不减且不会越过目标金额。
type InvestmentLogic struct {
	db     *gorm.DB
	ledger *chain.Ledger
}

// NewInvestmentLogic 创建投资业务逻辑
func NewInvestmentLogic(db *gorm.DB, ledger *chain.Ledger) *InvestmentLogic {
	return &InvestmentLogic{db: db, ledger: ledger}
}

// InvestmentInput 投资请求
type InvestmentInput struct {
	ProjectId     int64   `json:"projectId"`
	Amount        float64 `json:"amount"`
	Tokens        float64 `json:"tokens"`
	PaymentMethod string  `json:"paymentMethod"`
}

// RecordInvestment 记录一笔投资
func (l *InvestmentLogic) RecordInvestment(investorId int64, in *InvestmentInput) (*model.InvestmentModel, error) {
	if in.Amount <= 0 {
		return nil, ErrValidation("投资金额必须大于0")
	}
	if in.Tokens <= 0 {
		return nil, ErrValidation("代币数量必须大于0")
	}

	var project model.ProjectModel
	if err := l.db.First(&project, in.ProjectId).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound("项目不存在")
		}
		return nil, fmt.Errorf("获取项目失败: %w", err)
	}
	if project.Status != model.ProjectStatusActive {
		return nil, ErrConflict("项目不在募资中")
	}

	txHash, err := l.ledger.RecordInvestment(project.Id, in.Amount)
	if err != nil {
		return nil, err
	}

	investment := &model.InvestmentModel{
		InvestorId:     investorId,
		ProjectId:      project.Id,
		Tokens:         in.Tokens,
		Amount:         in.Amount,
		TxHash:         txHash,
		Status:         model.InvestmentStatusCompleted,
		ExpectedPayout: in.Amount * (1 + project.Roi/100),
		MaturityDate:   time.Now().AddDate(project.Tenure, 0, 0),
		PaymentMethod:  in.PaymentMethod,
	}

	err = l.db.Transaction(func(tx *gorm.DB) error {
		// 条件更新：不允许越过目标金额，两笔并发投资最多一笔越界者失败
		result := tx.Model(&model.ProjectModel{}).
			Where("id = ? AND funding_raised + ? <= funding_target", project.Id, in.Amount).
			Update("funding_raised", gorm.Expr("funding_raised + ?", in.Amount))
		if result.Error != nil {
			return fmt.Errorf("更新募资进度失败: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrConflict("投资金额超过项目剩余募资额度")
		}

		if err := tx.Create(investment).Error; err != nil {
			return fmt.Errorf("创建投资记录失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return investment, nil
}

// Holding 投资人在单个项目上的持仓汇总
type Holding struct {
	ProjectId      int64      `json:"projectId"`
	ProjectName    string     `json:"projectName"`
	Tokens         float64    `json:"tokens"`
	Invested       float64    `json:"invested"`
	ExpectedPayout float64    `json:"expectedPayout"`
	MaturityDate   *time.Time `json:"maturityDate"`
	Roi            float64    `json:"roi"`
}

// GetPortfolio 获取投资人按项目聚合的持仓
func (l *InvestmentLogic) GetPortfolio(investorId int64) ([]Holding, error) {
	var holdings []Holding
	err := l.db.Raw(`
		SELECT
			i.project_id,
			p.name as project_name,
			SUM(i.tokens) as tokens,
			SUM(i.amount) as invested,
			SUM(i.expected_payout) as expected_payout,
			MAX(i.maturity_date) as maturity_date,
			p.roi
		FROM investment i
		JOIN project p ON p.id = i.project_id
		WHERE i.investor_id = ?
		GROUP BY i.project_id, p.name, p.roi
		ORDER BY MAX(i.created_at) DESC
	`, investorId).Scan(&holdings).Error
	if err != nil {
		return nil, fmt.Errorf("获取持仓失败: %w", err)
	}
	if holdings == nil {
		holdings = []Holding{}
	}
	return holdings, nil
}

// Transaction 投资流水条目
type Transaction struct {
	Id          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	ProjectId   int64     `json:"projectId"`
	ProjectName string    `json:"projectName"`
	Type        string    `json:"type"`
	Tokens      float64   `json:"tokens"`
	Price       float64   `json:"price"`
	Status      string    `json:"status"`
	TxHash      string    `json:"txHash"`
}

// GetTransactions 获取投资人的交易流水（新→旧）
func (l *InvestmentLogic) GetTransactions(investorId int64) ([]Transaction, error) {
	var rows []struct {
		model.InvestmentModel
		ProjectName string
		TokenPrice  float64
	}
	err := l.db.Model(&model.InvestmentModel{}).
		Select("investment.*, project.name as project_name, project.token_price").
		Joins("JOIN project ON project.id = investment.project_id").
		Where("investment.investor_id = ?", investorId).
		Order("investment.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("获取交易流水失败: %w", err)
	}

	transactions := make([]Transaction, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, Transaction{
			Id:          row.Id,
			Timestamp:   row.CreatedAt,
			ProjectId:   row.ProjectId,
			ProjectName: row.ProjectName,
			Type:        "buy",
			Tokens:      row.Tokens,
			Price:       row.TokenPrice,
			Status:      string(row.Status),
			TxHash:      row.TxHash,
		})
	}
	return transactions, nil
}
