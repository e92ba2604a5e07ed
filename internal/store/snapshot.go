package store

import "context"

// SnapshotStore 整体状态快照的持久化接口
// Load 在没有任何快照时返回 (nil, nil)
type SnapshotStore interface {
	Save(ctx context.Context, state []byte) error
	Load(ctx context.Context) ([]byte, error)
}

// SessionMirror 会话标记：登录态 + 当前用户的一份冗余拷贝
// 每次状态落盘后同步，保证"是否有人登录"不用反序列化整个快照就能回答
type SessionMirror interface {
	Sync(loggedIn bool, userJSON []byte)
}
