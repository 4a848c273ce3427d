package repository

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"campus-portal/backend/internal/access"
	"campus-portal/backend/pkg/redis"
)

// Session 服务端会话：身份快照 + 过期时间。会话被删除或过期即视为外部失效。
type Session struct {
	ID        string          `json:"id"`
	Identity  access.Identity `json:"identity"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// SessionRepository 会话存储
type SessionRepository interface {
	Save(ctx context.Context, s *Session) error
	// Get 会话不存在或已过期时返回 gorm.ErrRecordNotFound
	Get(ctx context.Context, id string) (*Session, error)
	// Delete 幂等
	Delete(ctx context.Context, id string) error
}

// ── Redis 实现 ──

const sessionKeyPrefix = "session:"

type redisSessionRepo struct {
	rdb *redis.Client
}

// NewRedisSessionRepo 会话以 JSON 保存在 session:<id>，TTL 与会话过期时间一致
func NewRedisSessionRepo(rdb *redis.Client) SessionRepository {
	return &redisSessionRepo{rdb: rdb}
}

func (r *redisSessionRepo) Save(ctx context.Context, s *Session) error {
	return r.rdb.SetJSON(ctx, sessionKeyPrefix+s.ID, s, time.Until(s.ExpiresAt))
}

func (r *redisSessionRepo) Get(ctx context.Context, id string) (*Session, error) {
	var s Session
	found, err := r.rdb.GetJSON(ctx, sessionKeyPrefix+id, &s)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r *redisSessionRepo) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, sessionKeyPrefix+id)
}

// ── 内存实现 ──

type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

// NewMemorySessionRepo 创建内存会话存储，过期会话在读取时清除
func NewMemorySessionRepo() SessionRepository {
	return &memorySessionRepo{sessions: make(map[string]Session), now: time.Now}
}

func (r *memorySessionRepo) Save(ctx context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *memorySessionRepo) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if !s.ExpiresAt.IsZero() && r.now().After(s.ExpiresAt) {
		delete(r.sessions, id)
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r *memorySessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}
