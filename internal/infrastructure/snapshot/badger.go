package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
)

var stateKey = []byte("neontrade:state")

// BadgerStore 用 BadgerDB 保存整体状态快照，固定 key 覆盖写
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("打开快照库失败: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Save(ctx context.Context, state []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(stateKey, state)
	})
}

// Load 读取最近一次快照，没有快照时返回 (nil, nil)
func (s *BadgerStore) Load(ctx context.Context) ([]byte, error) {
	var state []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(stateKey)
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			state = append([]byte(nil), v...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
