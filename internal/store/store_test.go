package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"neontrade/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySnapshot 内存快照桩，记录保存次数以便断言写穿行为
type memorySnapshot struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	loadErr error
}

func (m *memorySnapshot) Save(_ context.Context, state []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), state...)
	m.saves++
	return nil
}

func (m *memorySnapshot) Load(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data, nil
}

func (m *memorySnapshot) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// judgeFunc 让测试里直接用闭包当结算规则
type judgeFunc func(trade *model.ActiveTrade) bool

func (f judgeFunc) Judge(trade *model.ActiveTrade) bool { return f(trade) }

var (
	winAll  = judgeFunc(func(*model.ActiveTrade) bool { return true })
	loseAll = judgeFunc(func(*model.ActiveTrade) bool { return false })
)

func newTestStore(t *testing.T) (*Store, *memorySnapshot) {
	t.Helper()
	snapshot := &memorySnapshot{}
	return New(snapshot, nil, []string{"NEON2025", "START77"}), snapshot
}

func newTestUser(id, mobile string) *model.User {
	return &model.User{
		ID:          id,
		Mobile:      mobile,
		Username:    "user-" + id,
		Balance:     decimal.Zero,
		CreditScore: 100,
		VIPLevel:    1,
		CreatedAt:   time.Now(),
	}
}

func registerUser(t *testing.T, s *Store, id, mobile string, balance int64) *model.User {
	t.Helper()
	user := newTestUser(id, mobile)
	require.NoError(t, s.Register(user, "NEON2025"))
	if balance > 0 {
		_, err := s.AdjustBalance(id, decimal.NewFromInt(balance))
		require.NoError(t, err)
	}
	return user
}

func newTrade(id, userID string, amount int64, direction string, duration int, rate float64) *model.ActiveTrade {
	return &model.ActiveTrade{
		ID:         id,
		UserID:     userID,
		CoinID:     "bitcoin",
		CoinSymbol: "BTC",
		Amount:     decimal.NewFromInt(amount),
		Direction:  direction,
		Duration:   duration,
		ProfitRate: decimal.NewFromFloat(rate),
		CreatedAt:  time.Now(),
	}
}

func TestRegisterValidation(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.Register(newTestUser("U1", "13800000001"), "BOGUS")
	assert.ErrorIs(t, err, ErrInvalidInvitationCode)

	require.NoError(t, s.Register(newTestUser("U1", "13800000001"), "NEON2025"))

	err = s.Register(newTestUser("U2", "13800000001"), "NEON2025")
	assert.ErrorIs(t, err, ErrMobileRegistered)
}

func TestRegisterDoesNotConsumeInvitationCode(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Register(newTestUser("U1", "13800000001"), "NEON2025"))
	require.NoError(t, s.Register(newTestUser("U2", "13800000002"), "NEON2025"))

	assert.Contains(t, s.InvitationCodes(), "NEON2025")
	assert.Len(t, s.Users(), 2)
}

func TestRegisterSetsCurrentUser(t *testing.T) {
	s, _ := newTestStore(t)

	registerUser(t, s, "U1", "13800000001", 0)
	current := s.CurrentUser()
	require.NotNil(t, current)
	assert.Equal(t, "U1", current.ID)
	assert.Equal(t, "0", current.Balance.String())
}

func TestCurrentUserLifecycle(t *testing.T) {
	s, _ := newTestStore(t)
	registerUser(t, s, "U1", "13800000001", 0)

	s.ClearCurrentUser()
	assert.Nil(t, s.CurrentUser())

	require.NoError(t, s.SetCurrentUser("U1"))
	require.NotNil(t, s.CurrentUser())

	assert.ErrorIs(t, s.SetCurrentUser("ghost"), ErrUserNotFound)
}

func TestAdjustBalanceClampsAtZero(t *testing.T) {
	s, _ := newTestStore(t)
	registerUser(t, s, "U1", "13800000001", 150)

	balance, err := s.AdjustBalance("U1", decimal.NewFromInt(-200))
	require.NoError(t, err)
	assert.Equal(t, "0", balance.String())
	assert.Equal(t, "0", s.UserByID("U1").Balance.String())
}

func TestAdjustBalanceUnknownUser(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.AdjustBalance("ghost", decimal.NewFromInt(100))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUsersReturnsClones(t *testing.T) {
	s, _ := newTestStore(t)
	registerUser(t, s, "U1", "13800000001", 500)

	view := s.UserByID("U1")
	view.Balance = decimal.NewFromInt(999999)
	assert.Equal(t, "500", s.UserByID("U1").Balance.String())
}

func TestUpdateBankAccount(t *testing.T) {
	s, _ := newTestStore(t)
	registerUser(t, s, "U1", "13800000001", 0)

	account := model.BankAccount{
		HolderName:    "Ravi Kumar",
		BankName:      "State Bank",
		AccountNumber: "00123456789",
		IFSC:          "SBIN0001234",
	}
	require.NoError(t, s.UpdateBankAccount("U1", account))

	user := s.UserByID("U1")
	require.NotNil(t, user.BankAccount)
	assert.Equal(t, "SBIN0001234", user.BankAccount.IFSC)

	assert.ErrorIs(t, s.UpdateBankAccount("ghost", account), ErrUserNotFound)
}

func TestStartTradeDebitsAndPrepends(t *testing.T) {
	s, _ := newTestStore(t)
	registerUser(t, s, "U1", "13800000001", 2000)

	require.NoError(t, s.StartTrade(newTrade("TRD1", "U1", 1000, model.TradeDirectionBuy, 60, 0.5)))
	require.NoError(t, s.StartTrade(newTrade("TRD2", "U1", 500, model.TradeDirectionSell, 120, 0.6)))

	assert.Equal(t, "500", s.UserByID("U1").Balance.String())

	active := s.ActiveTrades()
	require.Len(t, active, 2)
	// 最新在前
	assert.Equal(t, "TRD2", active[0].ID)
	assert.Equal(t, 120, active[0].RemainingSeconds)
	assert.Equal(t, "TRD1", active[1].ID)
	assert.Equal(t, 60, active[1].RemainingSeconds)
}

func TestStartTradeUnknownUser(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.StartTrade(newTrade("TRD1", "ghost", 100, model.TradeDirectionBuy, 60, 0.5))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSubmitAndResolveTransaction(t *testing.T) {
	s, _ := newTestStore(t)
	registerUser(t, s, "U1", "13800000001", 0)

	tx := &model.Transaction{
		ID:        "TXN1",
		UserID:    "U1",
		Type:      model.TransactionTypeRecharge,
		Amount:    decimal.NewFromInt(500),
		Status:    model.TransactionStatusPending,
		CreatedAt: time.Now(),
	}
	s.SubmitTransaction(tx)

	// 提交阶段不动余额
	assert.Equal(t, "0", s.UserByID("U1").Balance.String())

	resolved, ok := s.ResolveTransaction("TXN1", model.TransactionStatusApproved)
	require.True(t, ok)
	assert.Equal(t, model.TransactionStatusApproved, resolved.Status)
	assert.Equal(t, "500", s.UserByID("U1").Balance.String())

	// 重复审批是无操作
	_, ok = s.ResolveTransaction("TXN1", model.TransactionStatusApproved)
	assert.False(t, ok)
	_, ok = s.ResolveTransaction("TXN1", model.TransactionStatusRejected)
	assert.False(t, ok)
	assert.Equal(t, "500", s.UserByID("U1").Balance.String())
}

func TestResolveRejectedKeepsBalance(t *testing.T) {
	s, _ := newTestStore(t)
	registerUser(t, s, "U1", "13800000001", 1000)

	s.SubmitTransaction(&model.Transaction{
		ID:     "TXN1",
		UserID: "U1",
		Type:   model.TransactionTypeWithdraw,
		Amount: decimal.NewFromInt(400),
		Status: model.TransactionStatusPending,
	})

	resolved, ok := s.ResolveTransaction("TXN1", model.TransactionStatusRejected)
	require.True(t, ok)
	assert.Equal(t, model.TransactionStatusRejected, resolved.Status)
	assert.Equal(t, "1000", s.UserByID("U1").Balance.String())
}

func TestResolveUnknownTransaction(t *testing.T) {
	s, _ := newTestStore(t)

	_, ok := s.ResolveTransaction("nope", model.TransactionStatusApproved)
	assert.False(t, ok)
}

func TestApprovedWithdrawClampsAtZero(t *testing.T) {
	s, _ := newTestStore(t)
	registerUser(t, s, "U1", "13800000001", 150)

	s.SubmitTransaction(&model.Transaction{
		ID:     "TXN1",
		UserID: "U1",
		Type:   model.TransactionTypeWithdraw,
		Amount: decimal.NewFromInt(200),
		Status: model.TransactionStatusPending,
	})

	_, ok := s.ResolveTransaction("TXN1", model.TransactionStatusApproved)
	require.True(t, ok)
	assert.Equal(t, "0", s.UserByID("U1").Balance.String())
}

func TestManualAdjustRecordsAudit(t *testing.T) {
	s, _ := newTestStore(t)
	registerUser(t, s, "U1", "13800000001", 150)

	// 减 200，钳制后余额 0，流水按绝对值 200 记提现
	tx := &model.Transaction{
		ID:     "TXN1",
		UserID: "U1",
		Type:   model.TransactionTypeWithdraw,
		Amount: decimal.NewFromInt(200),
		Status: model.TransactionStatusApproved,
	}
	require.NoError(t, s.ManualAdjust(tx, decimal.NewFromInt(-200)))

	assert.Equal(t, "0", s.UserByID("U1").Balance.String())

	txs := s.TransactionsByUser("U1")
	require.Len(t, txs, 1)
	assert.Equal(t, model.TransactionStatusApproved, txs[0].Status)
	assert.Equal(t, model.TransactionTypeWithdraw, txs[0].Type)
	assert.Equal(t, "200", txs[0].Amount.String())
}

func TestManualAdjustZeroIsNoop(t *testing.T) {
	s, snapshot := newTestStore(t)
	registerUser(t, s, "U1", "13800000001", 100)

	before := snapshot.saveCount()
	require.NoError(t, s.ManualAdjust(&model.Transaction{ID: "TXN1", UserID: "U1"}, decimal.Zero))

	assert.Empty(t, s.TransactionsByUser("U1"))
	assert.Equal(t, "100", s.UserByID("U1").Balance.String())
	assert.Equal(t, before, snapshot.saveCount())
}

func TestManualAdjustUnknownUser(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.ManualAdjust(&model.Transaction{ID: "TXN1", UserID: "ghost"}, decimal.NewFromInt(50))
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, s.Transactions())
}

func TestInvitationCodeManagement(t *testing.T) {
	s, _ := newTestStore(t)

	s.AddInvitationCode("NT-ABC123")
	assert.Contains(t, s.InvitationCodes(), "NT-ABC123")

	assert.True(t, s.RemoveInvitationCode("NT-ABC123"))
	assert.NotContains(t, s.InvitationCodes(), "NT-ABC123")
	assert.False(t, s.RemoveInvitationCode("NT-ABC123"))
}

func TestRevokedCodeDoesNotAffectExistingUser(t *testing.T) {
	s, _ := newTestStore(t)
	registerUser(t, s, "U1", "13800000001", 0)

	require.True(t, s.RemoveInvitationCode("NEON2025"))

	// 已注册用户不受影响，新用户不能再用被吊销的码
	assert.NotNil(t, s.UserByID("U1"))
	err := s.Register(newTestUser("U2", "13800000002"), "NEON2025")
	assert.ErrorIs(t, err, ErrInvalidInvitationCode)
}

func TestNotifications(t *testing.T) {
	s, _ := newTestStore(t)

	// 初始状态带一条欢迎通知
	initial := s.Notifications()
	require.Len(t, initial, 1)
	assert.Equal(t, "welcome", initial[0].ID)
	assert.False(t, initial[0].IsRead)

	s.AddNotification(&model.Notification{ID: "NTF1", Title: "Maintenance", Timestamp: time.Now()})

	ns := s.Notifications()
	require.Len(t, ns, 2)
	assert.Equal(t, "NTF1", ns[0].ID)

	s.MarkNotificationsRead()
	for _, n := range s.Notifications() {
		assert.True(t, n.IsRead)
	}
}

func TestLanguage(t *testing.T) {
	s, _ := newTestStore(t)

	assert.Equal(t, model.LanguageEnglish, s.Language())
	s.SetLanguage(model.LanguageHindi)
	assert.Equal(t, model.LanguageHindi, s.Language())
}

func TestSnapshotWriteThroughAndReload(t *testing.T) {
	snapshot := &memorySnapshot{}
	s := New(snapshot, nil, []string{"NEON2025"})

	before := snapshot.saveCount()
	registerUser(t, s, "U1", "13800000001", 300)
	assert.Greater(t, snapshot.saveCount(), before)

	// 用同一份快照重建，状态完整恢复
	reloaded := New(snapshot, nil, []string{"NEON2025"})
	user := reloaded.UserByID("U1")
	require.NotNil(t, user)
	assert.Equal(t, "300", user.Balance.String())
	assert.Equal(t, "U1", reloaded.CurrentUser().ID)
}

func TestCorruptSnapshotFallsBackToDefault(t *testing.T) {
	snapshot := &memorySnapshot{data: []byte("{not json")}
	s := New(snapshot, nil, []string{"NEON2025"})

	assert.Empty(t, s.Users())
	assert.Equal(t, []string{"NEON2025"}, s.InvitationCodes())
}

func TestSnapshotLoadErrorFallsBackToDefault(t *testing.T) {
	snapshot := &memorySnapshot{loadErr: errors.New("disk gone")}
	s := New(snapshot, nil, []string{"NEON2025"})

	assert.Empty(t, s.Users())
	assert.Nil(t, s.CurrentUser())
}

func TestSnapshotRoundTripPreservesDecimals(t *testing.T) {
	snapshot := &memorySnapshot{}
	s := New(snapshot, nil, []string{"NEON2025"})
	registerUser(t, s, "U1", "13800000001", 0)
	_, err := s.AdjustBalance("U1", decimal.RequireFromString("1234.56"))
	require.NoError(t, err)

	var state model.AppState
	require.NoError(t, json.Unmarshal(snapshot.data, &state))
	require.Len(t, state.RegisteredUsers, 1)
	assert.Equal(t, "1234.56", state.RegisteredUsers[0].Balance.String())
}
