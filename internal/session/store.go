// Package session 客户端会话状态：启动时从持久化 Token 重建会话，
// 登录 / 注册 / 选班 / 登出都经由 Store 串行更新，并通知订阅者重新计算授权门。
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"campus-portal/backend/internal/access"
	"campus-portal/backend/internal/dto"
	pkgerrors "campus-portal/backend/pkg/errors"
)

// ErrAuthInFlight 已有登录 / 注册请求在进行中
var ErrAuthInFlight = pkgerrors.New(pkgerrors.ErrConflict, "已有认证请求在进行中")

// Backend 会话相关的远端操作（由 pkg/portalclient 实现）
type Backend interface {
	Login(ctx context.Context, email, password string) (*dto.SessionResponse, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.SessionResponse, error)
	Session(ctx context.Context, token string) (*dto.SessionView, error)
	SelectClass(ctx context.Context, token, className string) (*dto.SessionView, error)
	Logout(ctx context.Context, token string) error
}

// Snapshot 某一时刻的会话状态，按值传递给订阅者
type Snapshot struct {
	Stage        access.Stage
	Identity     *access.Identity
	Capabilities map[string][]string
	// Err 最近一次重建失败的原因；阶段为 unauthenticated 时才可能非空
	Err error
}

// IsAuthenticated 是否已登录
func (s Snapshot) IsAuthenticated() bool { return s.Identity != nil }

// NeedsClassSelection 是否等待学生选择班级
func (s Snapshot) NeedsClassSelection() bool { return s.Stage == access.StageAwaitingClassSelection }

// Store 并发安全的客户端会话状态机
type Store struct {
	backend Backend
	tokens  TokenStore
	timeout time.Duration
	logger  *zap.Logger

	mu           sync.Mutex
	snap         Snapshot
	token        *Token
	epoch        uint64
	authInFlight bool
	listeners    map[int]func(Snapshot)
	nextID       int
}

// NewStore 创建会话状态；timeout 为单次远端调用超时，<=0 时使用 10s
func NewStore(backend Backend, tokens TokenStore, timeout time.Duration, logger *zap.Logger) *Store {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Store{
		backend:   backend,
		tokens:    tokens,
		timeout:   timeout,
		logger:    logger,
		snap:      Snapshot{Stage: access.StageLoading},
		listeners: make(map[int]func(Snapshot)),
	}
}

// Snapshot 当前状态
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// AccessToken 当前 Access Token，未登录时为空
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

// Subscribe 注册状态变更回调，返回取消函数。回调在锁外调用，顺序不保证。
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// ────────────────────── 重建 ──────────────────────

// Start 从持久化 Token 重建会话。超时或网络错误时进入 unauthenticated 并记录 Err，
// 不会停留在 loading。期间若手动登录成功，迟到的重建结果被丢弃。
func (s *Store) Start(ctx context.Context) Snapshot {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()
	s.publish(epoch, Snapshot{Stage: access.StageLoading}, nil, false)

	tok, err := s.tokens.Load()
	if err != nil {
		s.logger.Warn("读取本地会话失败", zap.Error(err))
		return s.publish(epoch, unauthenticated(fmt.Errorf("读取本地会话失败: %w", err)), nil, true)
	}
	if tok == nil || tok.AccessToken == "" {
		return s.publish(epoch, unauthenticated(nil), nil, true)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	view, err := s.backend.Session(callCtx, tok.AccessToken)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrAuth) {
			// 服务端会话已失效：丢弃本地 Token（期间已重新登录则保留新 Token）
			if s.currentEpoch() == epoch {
				if cerr := s.tokens.Clear(); cerr != nil {
					s.logger.Warn("清除本地会话失败", zap.Error(cerr))
				}
			}
			return s.publish(epoch, unauthenticated(nil), nil, true)
		}
		return s.publish(epoch, unauthenticated(fmt.Errorf("会话重建失败: %w", err)), nil, true)
	}
	return s.publish(epoch, fromView(view), tok, true)
}

// ────────────────────── 登录 / 注册 ──────────────────────

// SignIn 登录；并发的第二次提交返回 ErrAuthInFlight
func (s *Store) SignIn(ctx context.Context, email, password string) (Snapshot, error) {
	return s.authenticate(ctx, func(ctx context.Context) (*dto.SessionResponse, error) {
		return s.backend.Login(ctx, email, password)
	})
}

// SignUp 注册并登录
func (s *Store) SignUp(ctx context.Context, req *dto.RegisterRequest) (Snapshot, error) {
	return s.authenticate(ctx, func(ctx context.Context) (*dto.SessionResponse, error) {
		return s.backend.Register(ctx, req)
	})
}

func (s *Store) authenticate(ctx context.Context, call func(context.Context) (*dto.SessionResponse, error)) (Snapshot, error) {
	s.mu.Lock()
	if s.authInFlight {
		s.mu.Unlock()
		return Snapshot{}, ErrAuthInFlight
	}
	s.authInFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.authInFlight = false
		s.mu.Unlock()
	}()

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	resp, err := call(callCtx)
	if err != nil {
		// 失败不改变现有状态，进行中的重建照常完成
		return s.Snapshot(), err
	}

	// 认证成功才开启新纪元，此后迟到的重建结果被丢弃
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	tok := &Token{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken, SavedAt: time.Now()}
	if err := s.tokens.Save(tok); err != nil {
		s.logger.Warn("保存本地会话失败", zap.Error(err))
	}
	return s.publish(epoch, fromView(&resp.SessionView), tok, true), nil
}

// ────────────────────── 选班 / 登出 / 失效 ──────────────────────

// SelectClass 学生选择班级；未登录时为空操作
func (s *Store) SelectClass(ctx context.Context, className string) (Snapshot, error) {
	s.mu.Lock()
	tok, epoch := s.token, s.epoch
	s.mu.Unlock()
	if tok == nil {
		return s.Snapshot(), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	view, err := s.backend.SelectClass(callCtx, tok.AccessToken, className)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrAuth) {
			s.Invalidate()
		}
		return s.Snapshot(), err
	}
	return s.publish(epoch, fromView(view), tok, true), nil
}

// SignOut 登出：无条件清空本地状态与持久化 Token；幂等。
// 远端登出失败只记录日志。
func (s *Store) SignOut(ctx context.Context) Snapshot {
	s.mu.Lock()
	tok := s.token
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	if tok != nil {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		if err := s.backend.Logout(callCtx, tok.AccessToken); err != nil {
			s.logger.Warn("远端登出失败", zap.Error(err))
		}
		cancel()
	}
	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn("清除本地会话失败", zap.Error(err))
	}
	return s.publish(epoch, unauthenticated(nil), nil, true)
}

// Invalidate 外部失效（例如接口返回 401）：立即回到 unauthenticated
func (s *Store) Invalidate() Snapshot {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn("清除本地会话失败", zap.Error(err))
	}
	return s.publish(epoch, unauthenticated(nil), nil, true)
}

// ── 内部 ──

func (s *Store) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// publish 在纪元未变化时写入新状态并通知订阅者；纪元已变化时返回当前状态。
// setToken 为 true 时同时替换内存中的 Token。
func (s *Store) publish(epoch uint64, next Snapshot, tok *Token, setToken bool) Snapshot {
	s.mu.Lock()
	if epoch != s.epoch {
		cur := s.snap
		s.mu.Unlock()
		s.logger.Debug("丢弃过期的会话结果", zap.Uint64("epoch", epoch))
		return cur
	}
	s.snap = next
	if setToken {
		s.token = tok
	}
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
	return next
}

func unauthenticated(err error) Snapshot {
	return Snapshot{Stage: access.StageUnauthenticated, Err: err}
}

func fromView(v *dto.SessionView) Snapshot {
	if v == nil || v.User == nil {
		return unauthenticated(nil)
	}
	id := &access.Identity{
		ID:        v.User.ID,
		Name:      v.User.Name,
		Email:     v.User.Email,
		Role:      access.Role(v.User.Role),
		ClassName: v.User.ClassName,
	}
	return Snapshot{
		Stage:        access.Evaluate(id),
		Identity:     id,
		Capabilities: v.Capabilities,
	}
}
