package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Token 持久化的登录凭证
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	SavedAt      time.Time `json:"saved_at"`
}

// TokenStore Token 的持久化位置
type TokenStore interface {
	// Load 不存在时返回 (nil, nil)
	Load() (*Token, error)
	Save(t *Token) error
	// Clear 幂等
	Clear() error
}

// ── 文件实现 ──

// FileTokenStore 以 JSON 文件保存 Token（权限 0600）
type FileTokenStore struct {
	path string
}

// NewFileTokenStore 创建文件 Token 存储
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultTokenPath ~/.campus-portal/session.json
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("获取用户目录失败: %w", err)
	}
	return filepath.Join(home, ".campus-portal", "session.json"), nil
}

func (s *FileTokenStore) Load() (*Token, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var t Token
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("解析 %s 失败: %w", s.path, err)
	}
	return &t, nil
}

func (s *FileTokenStore) Save(t *Token) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}

func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// ── 内存实现 ──

// MemoryTokenStore 进程内 Token 存储
type MemoryTokenStore struct {
	mu sync.Mutex
	t  *Token
}

func (s *MemoryTokenStore) Load() (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t == nil {
		return nil, nil
	}
	cp := *s.t
	return &cp, nil
}

func (s *MemoryTokenStore) Save(t *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.t = &cp
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t = nil
	return nil
}
