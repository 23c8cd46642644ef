// Package store 每类实体一张内存表，是唯一的数据源
// 读者只拿到快照副本或订阅变更通知，每次变更后整表镜像到 port.Mirror
package store

import (
	"context"
	"errors"
	"sync"

	"aitool-hub/internal/logger"
	"aitool-hub/internal/port"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("store: not found")
	ErrDuplicateID = errors.New("store: duplicate id")
)

// Entity 可以存入 Table 的值类型
type Entity[T any] interface {
	GetID() string
	WithID(id string) T
}

// Op 变更类型
type Op string

const (
	OpAdd     Op = "add"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
	OpReplace Op = "replace"
)

// Change 推送给订阅者的变更通知
type Change struct {
	Table string
	Op    Op
	ID    string
}

type Table[T Entity[T]] struct {
	key    string
	mirror port.Mirror
	log    logger.Logger
	newID  func() string

	mu    sync.RWMutex
	items []T

	subMu   sync.Mutex
	subs    map[int]chan Change
	nextSub int
}

// NewTable key 同时是镜像中的存储键
func NewTable[T Entity[T]](key string, mirror port.Mirror, log logger.Logger) *Table[T] {
	return &Table[T]{
		key:    key,
		mirror: mirror,
		log:    log,
		newID:  uuid.NewString,
		subs:   make(map[int]chan Change),
	}
}

func (t *Table[T]) Key() string { return t.key }

// List 返回快照副本，调用方修改不会影响表
func (t *Table[T]) List() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, len(t.items))
	copy(out, t.items)
	return out
}

func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

func (t *Table[T]) Get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i := t.indexOf(id); i >= 0 {
		return t.items[i], true
	}
	var zero T
	return zero, false
}

// Add 插入一条记录。ID 为空时生成 uuid，返回最终写入的值。
func (t *Table[T]) Add(ctx context.Context, item T) (T, error) {
	if item.GetID() == "" {
		item = item.WithID(t.newID())
	}

	t.mu.Lock()
	if t.indexOf(item.GetID()) >= 0 {
		t.mu.Unlock()
		return item, ErrDuplicateID
	}
	next := make([]T, 0, len(t.items)+1)
	next = append(next, t.items...)
	next = append(next, item)
	t.commit(ctx, next)
	t.mu.Unlock()

	t.notify(Change{Table: t.key, Op: OpAdd, ID: item.GetID()})
	return item, nil
}

// AddMissing 批量插入表中还没有的 id，返回实际插入的条数
func (t *Table[T]) AddMissing(ctx context.Context, items []T) int {
	t.mu.Lock()
	seen := make(map[string]bool, len(t.items)+len(items))
	for _, it := range t.items {
		seen[it.GetID()] = true
	}
	next := append([]T(nil), t.items...)
	var added []string
	for _, it := range items {
		if it.GetID() == "" {
			it = it.WithID(t.newID())
		}
		if seen[it.GetID()] {
			continue
		}
		seen[it.GetID()] = true
		next = append(next, it)
		added = append(added, it.GetID())
	}
	if len(added) > 0 {
		t.commit(ctx, next)
	}
	t.mu.Unlock()

	for _, id := range added {
		t.notify(Change{Table: t.key, Op: OpAdd, ID: id})
	}
	return len(added)
}

// Update 在副本上执行 fn 后整体替换，fn 不能修改 ID
func (t *Table[T]) Update(ctx context.Context, id string, fn func(*T)) (T, error) {
	t.mu.Lock()
	i := t.indexOf(id)
	if i < 0 {
		t.mu.Unlock()
		var zero T
		return zero, ErrNotFound
	}
	updated := t.items[i]
	fn(&updated)
	updated = updated.WithID(id)

	next := append([]T(nil), t.items...)
	next[i] = updated
	t.commit(ctx, next)
	t.mu.Unlock()

	t.notify(Change{Table: t.key, Op: OpUpdate, ID: id})
	return updated, nil
}

// Delete 只删除该 id，其它记录保持不变
func (t *Table[T]) Delete(ctx context.Context, id string) error {
	t.mu.Lock()
	i := t.indexOf(id)
	if i < 0 {
		t.mu.Unlock()
		return ErrNotFound
	}
	next := make([]T, 0, len(t.items)-1)
	next = append(next, t.items[:i]...)
	next = append(next, t.items[i+1:]...)
	t.commit(ctx, next)
	t.mu.Unlock()

	t.notify(Change{Table: t.key, Op: OpDelete, ID: id})
	return nil
}

// Replace 整表替换
func (t *Table[T]) Replace(ctx context.Context, items []T) error {
	next := make([]T, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.GetID() == "" {
			it = it.WithID(t.newID())
		}
		if seen[it.GetID()] {
			return ErrDuplicateID
		}
		seen[it.GetID()] = true
		next = append(next, it)
	}

	t.mu.Lock()
	t.commit(ctx, next)
	t.mu.Unlock()

	t.notify(Change{Table: t.key, Op: OpReplace})
	return nil
}

// reset 加载时使用，不镜像也不通知
func (t *Table[T]) reset(items []T) {
	t.mu.Lock()
	t.items = items
	t.mu.Unlock()
}

// Subscribe 订阅变更。缓冲区满时丢弃通知，不会阻塞写入方。
func (t *Table[T]) Subscribe(buf int) (<-chan Change, func()) {
	if buf <= 0 {
		buf = 16
	}
	ch := make(chan Change, buf)

	t.subMu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = ch
	t.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.subMu.Lock()
			delete(t.subs, id)
			t.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (t *Table[T]) notify(c Change) {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	for _, ch := range t.subs {
		select {
		case ch <- c:
		default:
			t.log.Debug("subscriber slow, change dropped", logger.String("table", t.key))
		}
	}
}

// commit 调用方必须持有写锁。镜像失败只记录日志，内存中的变更保留。
func (t *Table[T]) commit(ctx context.Context, next []T) {
	t.items = next
	if t.mirror == nil {
		return
	}
	if err := t.mirror.Save(ctx, t.key, next); err != nil {
		t.log.Warn("mirror write failed", logger.String("key", t.key), logger.Error(err))
	}
}

func (t *Table[T]) indexOf(id string) int {
	for i, it := range t.items {
		if it.GetID() == id {
			return i
		}
	}
	return -1
}
