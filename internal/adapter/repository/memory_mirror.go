package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"aitool-hub/internal/common"
	"aitool-hub/internal/port"
)

// MemoryMirror 未配置数据库时使用，进程退出即丢失
type MemoryMirror struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{blobs: make(map[string][]byte)}
}

func (m *MemoryMirror) Save(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return common.WrapError(common.ErrCodeInvalidInput, "encode "+key, err)
	}
	m.mu.Lock()
	m.blobs[key] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryMirror) Load(_ context.Context, key string, dst any) (bool, error) {
	m.mu.RLock()
	data, ok := m.blobs[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, common.WrapError(common.ErrCodeDatabase, "decode "+key, fmt.Errorf("%w: %w", port.ErrDecode, err))
	}
	return true, nil
}

func (m *MemoryMirror) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.blobs, key)
	m.mu.Unlock()
	return nil
}

// Raw 返回某个键的原始 JSON，测试用
func (m *MemoryMirror) Raw(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	return data, ok
}
