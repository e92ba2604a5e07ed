package session

import (
	"sync"
	"time"
)

// Store 会话标记：登录态布尔值 + 当前用户记录的冗余拷贝，
// 以及管理端 API 令牌。回答"是否有人登录"不需要碰整体快照
type Store interface {
	Sync(loggedIn bool, userJSON []byte)
	IsLoggedIn() bool
	CurrentUserJSON() []byte
	SetAdminToken(token string, ttl time.Duration)
	CheckAdminToken(token string) bool
}

// Memory 内存实现，测试用
type Memory struct {
	mu             sync.Mutex
	loggedIn       bool
	userJSON       []byte
	adminToken     string
	adminExpiresAt time.Time
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Sync(loggedIn bool, userJSON []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loggedIn = loggedIn
	m.userJSON = userJSON
}

func (m *Memory) IsLoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loggedIn
}

func (m *Memory) CurrentUserJSON() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userJSON
}

func (m *Memory) SetAdminToken(token string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adminToken = token
	m.adminExpiresAt = time.Now().Add(ttl)
}

func (m *Memory) CheckAdminToken(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return token != "" && token == m.adminToken && time.Now().Before(m.adminExpiresAt)
}
