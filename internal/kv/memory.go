package kv

import (
	"context"
	"sync"
)

// MemoryStorage 基于内存的键值存储，进程退出后数据丢失
type MemoryStorage struct {
	data  map[string]string
	mutex sync.RWMutex
}

// NewMemoryStorage 创建内存存储
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		data: make(map[string]string),
	}
}

// Get 读取键值
func (m *MemoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	value, ok := m.data[key]
	return value, ok, nil
}

// Set 写入键值
func (m *MemoryStorage) Set(ctx context.Context, key, value string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.data[key] = value
	return nil
}

// Remove 删除键
func (m *MemoryStorage) Remove(ctx context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.data, key)
	return nil
}
