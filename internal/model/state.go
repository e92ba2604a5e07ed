package model

import "time"

const (
	LanguageEnglish = "en"
	LanguageHindi   = "hi"
)

// AppState 整个应用的状态快照，持久化时整体序列化成一条记录
// 当前登录用户只存 ID，展示时按 ID 从 RegisteredUsers 查出来，避免两份拷贝互相同步
type AppState struct {
	CurrentUserID   string          `json:"current_user_id"`
	RegisteredUsers []*User         `json:"registered_users"`
	InvitationCodes []string        `json:"invitation_codes"`
	Trades          []*TradeRecord  `json:"trades"` // 历史，最新在前
	ActiveTrades    []*ActiveTrade  `json:"active_trades"`
	Transactions    []*Transaction  `json:"transactions"` // 最新在前
	Notifications   []*Notification `json:"notifications"`
	Language        string          `json:"language"`
}

// DefaultAppState 初始状态：预置邀请码 + 欢迎通知
func DefaultAppState(seedInvitationCodes []string) *AppState {
	codes := make([]string, len(seedInvitationCodes))
	copy(codes, seedInvitationCodes)

	return &AppState{
		RegisteredUsers: []*User{},
		InvitationCodes: codes,
		Trades:          []*TradeRecord{},
		ActiveTrades:    []*ActiveTrade{},
		Transactions:    []*Transaction{},
		Notifications: []*Notification{
			{
				ID:        "welcome",
				Title:     "Welcome to NeonTrade",
				Content:   "Welcome to the platform! To recharge your account and start trading, please contact your designated account manager.",
				Timestamp: time.Now(),
			},
		},
		Language: LanguageEnglish,
	}
}

// UserByID 按 ID 查用户，找不到返回 nil
func (s *AppState) UserByID(id string) *User {
	for _, u := range s.RegisteredUsers {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// UserByMobile 按手机号查用户
func (s *AppState) UserByMobile(mobile string) *User {
	for _, u := range s.RegisteredUsers {
		if u.Mobile == mobile {
			return u
		}
	}
	return nil
}

// CurrentUser 派生视图：按 CurrentUserID 查当前登录用户
func (s *AppState) CurrentUser() *User {
	if s.CurrentUserID == "" {
		return nil
	}
	return s.UserByID(s.CurrentUserID)
}

// HasInvitationCode 邀请码是否有效（注册不消耗邀请码，可重复使用）
func (s *AppState) HasInvitationCode(code string) bool {
	for _, c := range s.InvitationCodes {
		if c == code {
			return true
		}
	}
	return false
}
