package chain

import (
	"crypto/rand"
	"fmt"

	"github.com/blues/fis/internal/logger"
	"github.com/ethereum/go-ethereum/common"
)

// Ledger 模拟链上托管账本
//
// 平台不执行真实的链上托管，只为投资和托管释放生成形如真实交易哈希的
// 回执，供前端展示和审计事件引用。
type Ledger struct{}

// NewLedger 创建模拟账本
func NewLedger() *Ledger {
	return &Ledger{}
}

// NewTxHash 生成一个32字节随机交易哈希
func (l *Ledger) NewTxHash() (string, error) {
	var buf [common.HashLength]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("failed to generate tx hash: %w", err)
	}
	return common.BytesToHash(buf[:]).Hex(), nil
}

// RecordInvestment 为投资生成模拟交易回执
func (l *Ledger) RecordInvestment(projectId int64, amount float64) (string, error) {
	txHash, err := l.NewTxHash()
	if err != nil {
		return "", err
	}
	logger.Info("Simulated investment tx %s: project=%d amount=%.2f", txHash, projectId, amount)
	return txHash, nil
}

// RecordEscrowRelease 为托管释放生成模拟交易回执
func (l *Ledger) RecordEscrowRelease(projectId int64, amount float64) (string, error) {
	txHash, err := l.NewTxHash()
	if err != nil {
		return "", err
	}
	logger.Info("Simulated escrow release tx %s: project=%d amount=%.2f", txHash, projectId, amount)
	return txHash, nil
}
