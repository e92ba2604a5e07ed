package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"neontrade/internal/archive"
	"neontrade/internal/model"
	"neontrade/internal/store"
	"neontrade/pkg/idgen"

	"github.com/shopspring/decimal"
)

var ErrInvalidTransactionType = errors.New("invalid transaction type")

type TransactionService struct {
	store     *store.Store
	archive   *archive.Archive // 未配置归档库时为 nil
	minAmount decimal.Decimal
}

func NewTransactionService(st *store.Store, arch *archive.Archive, minAmount int64) *TransactionService {
	return &TransactionService{
		store:     st,
		archive:   arch,
		minAmount: decimal.NewFromInt(minAmount),
	}
}

// Submit 提交充值/提现申请，进入 Pending，不动余额
// 提现在提交时校验可用余额，余额只会在审批通过时真正扣减
func (s *TransactionService) Submit(ctx context.Context, userID, txType string, amount decimal.Decimal) (*model.Transaction, error) {
	if txType != model.TransactionTypeRecharge && txType != model.TransactionTypeWithdraw {
		return nil, ErrInvalidTransactionType
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if amount.LessThan(s.minAmount) {
		return nil, fmt.Errorf("%w: minimum amount is %s", ErrInvalidAmount, s.minAmount.String())
	}

	user := s.store.UserByID(userID)
	if user == nil {
		return nil, store.ErrUserNotFound
	}
	if txType == model.TransactionTypeWithdraw && amount.GreaterThan(user.Balance) {
		return nil, ErrInsufficientBalance
	}

	tx := &model.Transaction{
		ID:        idgen.GenerateTransactionNo(),
		UserID:    userID,
		Type:      txType,
		Amount:    amount,
		Status:    model.TransactionStatusPending,
		CreatedAt: time.Now(),
	}
	s.store.SubmitTransaction(tx)
	return tx.Clone(), nil
}

// Resolve 审批：approve 为真走 Pending->Approved 并调整余额，否则 Pending->Rejected
// 找不到或已是终态时返回 false，重复审批没有任何额外的余额影响
func (s *TransactionService) Resolve(ctx context.Context, id string, approve bool) (*model.Transaction, bool) {
	targetStatus := model.TransactionStatusRejected
	if approve {
		targetStatus = model.TransactionStatusApproved
	}

	tx, ok := s.store.ResolveTransaction(id, targetStatus)
	if !ok {
		return nil, false
	}

	s.archiveTransaction(ctx, tx)
	return tx, true
}

// ManualAdjust 管理员直接调整余额：生成一条已通过的流水仅作审计
// 类型按符号推断，金额取绝对值；调整 0 不产生任何效果
func (s *TransactionService) ManualAdjust(ctx context.Context, userID string, amount decimal.Decimal) (*model.Transaction, error) {
	if s.store.UserByID(userID) == nil {
		return nil, store.ErrUserNotFound
	}
	if amount.IsZero() {
		return nil, nil
	}

	txType := model.TransactionTypeRecharge
	if amount.IsNegative() {
		txType = model.TransactionTypeWithdraw
	}

	tx := &model.Transaction{
		ID:        idgen.GenerateTransactionNo(),
		UserID:    userID,
		Type:      txType,
		Amount:    amount.Abs(),
		Status:    model.TransactionStatusApproved,
		CreatedAt: time.Now(),
	}

	if err := s.store.ManualAdjust(tx, amount); err != nil {
		return nil, err
	}

	s.archiveTransaction(ctx, tx)
	return tx.Clone(), nil
}

func (s *TransactionService) List(ctx context.Context, userID string) []*model.Transaction {
	return s.store.TransactionsByUser(userID)
}

func (s *TransactionService) ListAll(ctx context.Context) []*model.Transaction {
	return s.store.Transactions()
}

func (s *TransactionService) archiveTransaction(ctx context.Context, tx *model.Transaction) {
	if s.archive == nil {
		return
	}
	if err := s.archive.SaveTransaction(ctx, tx); err != nil {
		log.Printf("[TransactionService] 流水归档失败: txID=%s, err=%v", tx.ID, err)
	}
}
