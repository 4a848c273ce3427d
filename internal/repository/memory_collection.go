package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemoryCollection 进程内集合，读写由 RWMutex 保护，读取时返回副本
type MemoryCollection[T any, P recordPtr[T]] struct {
	mu     sync.RWMutex
	order  []string // 插入顺序
	items  map[string]*T
	unique [][]string
	now    func() time.Time
}

// MemoryOption 内存集合选项
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	unique [][]string
	now    func() time.Time
}

// WithUnique 声明唯一约束列组合，违反时 Create 返回 ErrDuplicate
func WithUnique(columns ...string) MemoryOption {
	return func(o *memoryOptions) { o.unique = append(o.unique, columns) }
}

// WithClock 注入时钟（测试用）
func WithClock(now func() time.Time) MemoryOption {
	return func(o *memoryOptions) { o.now = now }
}

// NewMemoryCollection 创建内存集合，可携带初始数据（按切片顺序视为先后创建）
func NewMemoryCollection[T any, P recordPtr[T]](seed []T, opts ...MemoryOption) *MemoryCollection[T, P] {
	o := memoryOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	c := &MemoryCollection[T, P]{
		items:  make(map[string]*T, len(seed)),
		unique: o.unique,
		now:    o.now,
	}
	for i := range seed {
		item := seed[i]
		p := P(&item)
		if p.RecordID() == "" {
			p.AssignID(uuid.NewString(), c.now())
		}
		c.order = append(c.order, p.RecordID())
		c.items[p.RecordID()] = &item
	}
	return c
}

func (c *MemoryCollection[T, P]) Create(ctx context.Context, item *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.violatesUnique(P(item)) {
		return ErrDuplicate
	}
	P(item).AssignID(uuid.NewString(), c.now())
	stored := *item
	c.order = append(c.order, P(item).RecordID())
	c.items[P(item).RecordID()] = &stored
	return nil
}

func (c *MemoryCollection[T, P]) violatesUnique(rec P) bool {
	for _, cols := range c.unique {
		for _, existing := range c.items {
			same := true
			for _, col := range cols {
				if P(existing).Field(col) != rec.Field(col) {
					same = false
					break
				}
			}
			if same {
				return true
			}
		}
	}
	return false
}

func (c *MemoryCollection[T, P]) Get(ctx context.Context, id string) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *item
	return &cp, nil
}

// List 最新在前
func (c *MemoryCollection[T, P]) List(ctx context.Context, q Query) ([]T, int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matched := make([]T, 0, len(c.order))
	for i := len(c.order) - 1; i >= 0; i-- {
		item := c.items[c.order[i]]
		if !matchesScopes(P(item), q.Scopes) || !Matches(P(item), q.Filter) {
			continue
		}
		matched = append(matched, *item)
	}
	total := int64(len(matched))
	return page(matched, q.Offset, q.Limit), total, nil
}

func (c *MemoryCollection[T, P]) Update(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	draft := *item
	if err := fn(&draft); err != nil {
		return nil, err
	}
	P(&draft).Touch(c.now())
	*item = draft
	out := draft
	return &out, nil
}

func (c *MemoryCollection[T, P]) Count(ctx context.Context, scopes ...Scope) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int64
	for _, item := range c.items {
		if matchesScopes(P(item), scopes) {
			n++
		}
	}
	return n, nil
}
