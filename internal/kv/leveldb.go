package kv

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelStore 基于 LevelDB 的持久化实现
type LevelStore struct {
	conn *leveldb.DB
}

// OpenLevelStore 打开（或创建）指定目录的 LevelDB
func OpenLevelStore(path string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelStore{conn: db}, nil
}

func (s *LevelStore) Get(key string) ([]byte, error) {
	v, err := s.conn.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return v, err
}

func (s *LevelStore) Put(key string, value []byte) error {
	return s.conn.Put([]byte(key), value, nil)
}

func (s *LevelStore) Delete(key string) error {
	return s.conn.Delete([]byte(key), nil)
}

func (s *LevelStore) Close() error { return s.conn.Close() }
