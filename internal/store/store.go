package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"neontrade/internal/model"

	"github.com/shopspring/decimal"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidInvitationCode = errors.New("invalid invitation code")
	ErrMobileRegistered      = errors.New("this mobile number is already registered")
)

// Store 状态容器，内部状态只能通过这里的具名操作变更
// 单把互斥锁保证 tick 和各类用户意图处理互不交叠；每次变更后整体快照写穿落盘
type Store struct {
	mu        sync.Mutex
	state     *model.AppState
	snapshots SnapshotStore
	session   SessionMirror
	seedCodes []string
}

// New 创建并加载状态容器
// 快照缺失或损坏时退回到预置初始状态，绝不因此崩溃
func New(snapshots SnapshotStore, session SessionMirror, seedInvitationCodes []string) *Store {
	s := &Store{
		snapshots: snapshots,
		session:   session,
		seedCodes: seedInvitationCodes,
	}
	s.state = s.loadState()
	return s
}

func (s *Store) loadState() *model.AppState {
	data, err := s.snapshots.Load(context.Background())
	if err != nil {
		log.Printf("[Store] 加载快照失败，使用初始状态: %v", err)
		return model.DefaultAppState(s.seedCodes)
	}
	if len(data) == 0 {
		return model.DefaultAppState(s.seedCodes)
	}

	state := &model.AppState{}
	if err := json.Unmarshal(data, state); err != nil {
		log.Printf("[Store] 快照解析失败，使用初始状态: %v", err)
		return model.DefaultAppState(s.seedCodes)
	}
	if state.Language == "" {
		state.Language = model.LanguageEnglish
	}
	return state
}

// persistLocked 整体序列化落盘并同步会话标记，调用方必须持有锁
func (s *Store) persistLocked() {
	data, err := json.Marshal(s.state)
	if err != nil {
		log.Printf("[Store] 快照序列化失败: %v", err)
		return
	}
	if err := s.snapshots.Save(context.Background(), data); err != nil {
		log.Printf("[Store] 快照保存失败: %v", err)
	}

	if s.session != nil {
		user := s.state.CurrentUser()
		if user == nil {
			s.session.Sync(false, nil)
		} else {
			userJSON, _ := json.Marshal(user)
			s.session.Sync(true, userJSON)
		}
	}
}

// adjustBalanceLocked 余额调整原语：新余额 = max(0, 余额+delta)
// 所有余额变更（结算、审批、管理员调整、下单扣款）都必须走这里，钳制是最后一道防线
func (s *Store) adjustBalanceLocked(userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	user := s.state.UserByID(userID)
	if user == nil {
		return decimal.Zero, ErrUserNotFound
	}
	newBalance := user.Balance.Add(delta)
	if newBalance.IsNegative() {
		newBalance = decimal.Zero
	}
	user.Balance = newBalance
	return newBalance, nil
}

// ============================================================
// 账户 / 会话
// ============================================================

// Register 注册新用户并使其立即成为当前会话用户
// 邀请码只校验有效性，不消耗；同一手机号不能重复注册
func (s *Store) Register(user *model.User, invitationCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.HasInvitationCode(invitationCode) {
		return ErrInvalidInvitationCode
	}
	if s.state.UserByMobile(user.Mobile) != nil {
		return ErrMobileRegistered
	}

	s.state.RegisteredUsers = append(s.state.RegisteredUsers, user)
	s.state.CurrentUserID = user.ID
	s.persistLocked()
	return nil
}

// SetCurrentUser 登录成功后记录当前会话用户
func (s *Store) SetCurrentUser(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.UserByID(userID) == nil {
		return ErrUserNotFound
	}
	s.state.CurrentUserID = userID
	s.persistLocked()
	return nil
}

// ClearCurrentUser 登出
func (s *Store) ClearCurrentUser() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.CurrentUserID = ""
	s.persistLocked()
}

func (s *Store) CurrentUser() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CurrentUser().Clone()
}

func (s *Store) UserByID(userID string) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UserByID(userID).Clone()
}

func (s *Store) UserByMobile(mobile string) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UserByMobile(mobile).Clone()
}

func (s *Store) Users() []*model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]*model.User, 0, len(s.state.RegisteredUsers))
	for _, u := range s.state.RegisteredUsers {
		users = append(users, u.Clone())
	}
	return users
}

// AdjustBalance 余额调整（带下限钳制），返回调整后的余额
func (s *Store) AdjustBalance(userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	newBalance, err := s.adjustBalanceLocked(userID, delta)
	if err != nil {
		return decimal.Zero, err
	}
	s.persistLocked()
	return newBalance, nil
}

// UpdateBankAccount 绑定/更新收款银行账户
func (s *Store) UpdateBankAccount(userID string, account model.BankAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.state.UserByID(userID)
	if user == nil {
		return ErrUserNotFound
	}
	user.BankAccount = &account
	s.persistLocked()
	return nil
}

// ============================================================
// 交易账本
// ============================================================

// StartTrade 开始一笔交易：倒计时置满、挂入活跃集合头部、立即从余额中扣除本金
// 金额、余额等校验是调用方的责任，这里只负责状态变更
func (s *Store) StartTrade(trade *model.ActiveTrade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.UserByID(trade.UserID) == nil {
		return ErrUserNotFound
	}

	trade.RemainingSeconds = trade.Duration
	s.state.ActiveTrades = append([]*model.ActiveTrade{trade}, s.state.ActiveTrades...)

	if _, err := s.adjustBalanceLocked(trade.UserID, trade.Amount.Neg()); err != nil {
		log.Printf("[Store] 下单扣款失败: userID=%s, err=%v", trade.UserID, err)
	}

	s.persistLocked()
	return nil
}

func (s *Store) ActiveTrades() []*model.ActiveTrade {
	s.mu.Lock()
	defer s.mu.Unlock()

	trades := make([]*model.ActiveTrade, 0, len(s.state.ActiveTrades))
	for _, t := range s.state.ActiveTrades {
		trades = append(trades, t.Clone())
	}
	return trades
}

func (s *Store) TradeHistory() []*model.TradeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]*model.TradeRecord, 0, len(s.state.Trades))
	for _, r := range s.state.Trades {
		records = append(records, r.Clone())
	}
	return records
}

// Tick 结算引擎的一个时间步，整个批次在一次加锁内原子完成：
//  1. 所有活跃交易 remainingSeconds = max(0, r-1)
//  2. 归零的交易按 judge 判定输赢，生成不可变成交记录并插入历史头部
//  3. 同一用户本批次的余额增量汇总后一次性调整（下限钳制 0）
//
// 没有到期交易时只落盘倒计时，余额和历史保持不变
// 返回本次结算出的记录副本，供调用方在锁外发事件、写归档
func (s *Store) Tick(now time.Time, judge model.OutcomeJudge) []*model.TradeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.state.ActiveTrades) == 0 {
		return nil
	}

	var expired, ongoing []*model.ActiveTrade
	for _, t := range s.state.ActiveTrades {
		if t.RemainingSeconds > 0 {
			t.RemainingSeconds--
		}
		if t.RemainingSeconds == 0 {
			expired = append(expired, t)
		} else {
			ongoing = append(ongoing, t)
		}
	}

	if len(expired) == 0 {
		s.persistLocked()
		return nil
	}

	// 按用户汇总余额增量
	deltas := make(map[string]decimal.Decimal)
	settled := make([]*model.TradeRecord, 0, len(expired))

	for _, trade := range expired {
		win := judge.Judge(trade)
		record, returned := trade.SettleRecord(win, now)

		s.state.Trades = append([]*model.TradeRecord{record}, s.state.Trades...)
		settled = append(settled, record.Clone())

		deltas[trade.UserID] = deltas[trade.UserID].Add(returned)
	}

	for userID, delta := range deltas {
		if _, err := s.adjustBalanceLocked(userID, delta); err != nil {
			// 用户不存在只跳过余额调整，交易照常进入历史，记录下来便于对账
			log.Printf("[Settlement] 结算时用户不存在，跳过余额调整: userID=%s", userID)
		}
	}

	s.state.ActiveTrades = ongoing
	s.persistLocked()
	return settled
}

// ============================================================
// 充值 / 提现审批
// ============================================================

// SubmitTransaction 提交待审批的充值/提现申请，不动余额
func (s *Store) SubmitTransaction(tx *model.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Transactions = append([]*model.Transaction{tx}, s.state.Transactions...)
	s.persistLocked()
}

// ResolveTransaction 审批：只有 Pending 状态可以流转，重复审批是无操作
// 通过时按类型调整余额（充值加、提现减），驳回只改状态
func (s *Store) ResolveTransaction(id string, targetStatus string) (*model.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target *model.Transaction
	for _, tx := range s.state.Transactions {
		if tx.ID == id {
			target = tx
			break
		}
	}
	if target == nil || !model.CanTransitionTo(target.Status, targetStatus) {
		return nil, false
	}

	target.Status = targetStatus

	if targetStatus == model.TransactionStatusApproved {
		if _, err := s.adjustBalanceLocked(target.UserID, target.BalanceDelta()); err != nil {
			log.Printf("[Store] 审批时用户不存在，跳过余额调整: txID=%s, userID=%s", id, target.UserID)
		}
	}

	s.persistLocked()
	return target.Clone(), true
}

// ManualAdjust 管理员直接调整余额：跳过 Pending，生成一条已通过的流水仅作审计
// 金额为 0 时不产生流水也不落任何变更
func (s *Store) ManualAdjust(tx *model.Transaction, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if delta.IsZero() {
		return nil
	}
	if _, err := s.adjustBalanceLocked(tx.UserID, delta); err != nil {
		return err
	}

	s.state.Transactions = append([]*model.Transaction{tx}, s.state.Transactions...)
	s.persistLocked()
	return nil
}

func (s *Store) Transactions() []*model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs := make([]*model.Transaction, 0, len(s.state.Transactions))
	for _, tx := range s.state.Transactions {
		txs = append(txs, tx.Clone())
	}
	return txs
}

func (s *Store) TransactionsByUser(userID string) []*model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	var txs []*model.Transaction
	for _, tx := range s.state.Transactions {
		if tx.UserID == userID {
			txs = append(txs, tx.Clone())
		}
	}
	return txs
}

// ============================================================
// 邀请码 / 通知 / 设置
// ============================================================

func (s *Store) AddInvitationCode(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.InvitationCodes = append(s.state.InvitationCodes, code)
	s.persistLocked()
}

// RemoveInvitationCode 吊销邀请码，已用该码注册的用户不受影响
func (s *Store) RemoveInvitationCode(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.state.InvitationCodes {
		if c == code {
			s.state.InvitationCodes = append(s.state.InvitationCodes[:i], s.state.InvitationCodes[i+1:]...)
			s.persistLocked()
			return true
		}
	}
	return false
}

func (s *Store) InvitationCodes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	codes := make([]string, len(s.state.InvitationCodes))
	copy(codes, s.state.InvitationCodes)
	return codes
}

// AddNotification 追加广播通知，最新在前
func (s *Store) AddNotification(n *model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Notifications = append([]*model.Notification{n}, s.state.Notifications...)
	s.persistLocked()
}

func (s *Store) Notifications() []*model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns := make([]*model.Notification, 0, len(s.state.Notifications))
	for _, n := range s.state.Notifications {
		ns = append(ns, n.Clone())
	}
	return ns
}

func (s *Store) MarkNotificationsRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.state.Notifications {
		n.IsRead = true
	}
	s.persistLocked()
}

func (s *Store) SetLanguage(language string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Language = language
	s.persistLocked()
}

func (s *Store) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Language
}
