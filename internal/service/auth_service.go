package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-portal/backend/config"
	"campus-portal/backend/internal/access"
	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/repository"
	pkgerrors "campus-portal/backend/pkg/errors"
	"campus-portal/backend/pkg/jwt"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials       = pkgerrors.New(pkgerrors.ErrAuth, "邮箱或密码错误")
	ErrDuplicateAccount         = pkgerrors.New(pkgerrors.ErrAuth, "该邮箱已注册")
	ErrSessionNotFound          = pkgerrors.New(pkgerrors.ErrAuth, "会话不存在或已失效")
	ErrInvalidRefreshToken      = pkgerrors.New(pkgerrors.ErrAuth, "Refresh Token 无效")
	ErrClassSelectionNotStudent = pkgerrors.New(pkgerrors.ErrForbidden, "仅学生需要选择班级")
	ErrUnknownClass             = pkgerrors.Validation("class_name", "班级不存在")
)

// TokenBlacklist 登出时吊销 Access Token（由 Redis 提供，可为空）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// ── AuthService 接口 ──────────────────────────────────
//
// 设计说明：
//   - 会话保存在 SessionRepository 中，JWT 只携带会话 ID（sid）。
//     中间件每次请求都会回查会话，会话被删除或过期即视为外部失效。
//   - SignIn / SignUp 失败时不创建会话；SignOut 无条件且幂等。
//   - SelectClass 只修改会话身份中的 ClassName，不触碰其他字段。
// ─────────────────────────────────────────────────────────────

// AuthService 认证业务接口
type AuthService interface {
	SignIn(ctx context.Context, req *dto.LoginRequest) (*dto.SessionResponse, error)
	SignUp(ctx context.Context, req *dto.RegisterRequest) (*dto.SessionResponse, error)
	SignOut(ctx context.Context, sessionID, jti string, expiresAt time.Time) error
	SelectClass(ctx context.Context, sessionID, className string) (*dto.SessionView, error)
	// Authenticate 按会话 ID 取回身份（中间件使用）
	Authenticate(ctx context.Context, sessionID string) (*access.Identity, error)
	// Session 会话重建：返回仍然有效的会话视图
	Session(ctx context.Context, sessionID string) (*dto.SessionView, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.SessionResponse, error)
	Classes() []string
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	provider  IdentityProvider
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService 创建 AuthService 实例；blacklist 为 nil 时登出只删除会话
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		provider:  NewIdentityProvider(&cfg.Auth, repo.User),
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *authService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Auth.RequestTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.Auth.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

// ────────────────────── SignIn ──────────────────────

func (s *authService) SignIn(ctx context.Context, req *dto.LoginRequest) (*dto.SessionResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.provider.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			s.logger.Error("校验凭据失败", zap.Error(err))
		}
		return nil, err
	}

	return s.establish(ctx, access.FromUser(user))
}

// ────────────────────── SignUp ──────────────────────

func (s *authService) SignUp(ctx context.Context, req *dto.RegisterRequest) (*dto.SessionResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	role := access.Role(req.Role)
	if !role.Valid() {
		return nil, pkgerrors.Validation("role", "角色只能是 student 或 faculty")
	}

	user := &model.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Role:  string(role),
	}
	if err := s.provider.Register(ctx, user, req.Password); err != nil {
		if !errors.Is(err, ErrDuplicateAccount) {
			s.logger.Error("注册身份失败", zap.String("email", req.Email), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("新用户注册", zap.String("user_id", user.ID), zap.String("role", user.Role))
	return s.establish(ctx, access.FromUser(user))
}

// establish 创建会话并签发 Token 对
func (s *authService) establish(ctx context.Context, id access.Identity) (*dto.SessionResponse, error) {
	now := s.now()
	sess := &repository.Session{
		ID:        uuid.NewString(),
		Identity:  id,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.Session.TTL),
	}
	if err := s.repo.Session.Save(ctx, sess); err != nil {
		s.logger.Error("保存会话失败", zap.String("user_id", id.ID), zap.Error(err))
		return nil, err
	}

	accessToken, err := s.jwtMgr.GenerateAccessToken(id.ID, string(id.Role), sess.ID)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(id.ID, string(id.Role), sess.ID)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.SessionResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		SessionView:  *NewSessionView(&sess.Identity),
	}, nil
}

// ────────────────────── SignOut ──────────────────────

func (s *authService) SignOut(ctx context.Context, sessionID, jti string, expiresAt time.Time) error {
	if sessionID != "" {
		if err := s.repo.Session.Delete(ctx, sessionID); err != nil {
			s.logger.Warn("删除会话失败", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	if s.blacklist != nil && jti != "" {
		if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
			s.logger.Warn("吊销 Token 失败", zap.String("jti", jti), zap.Error(err))
		}
	}
	return nil
}

// ────────────────────── SelectClass ──────────────────────

func (s *authService) SelectClass(ctx context.Context, sessionID, className string) (*dto.SessionView, error) {
	sess, err := s.repo.Session.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 没有会话时静默忽略
			return NewSessionView(nil), nil
		}
		s.logger.Error("查询会话失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	if !sess.Identity.IsStudent() {
		return nil, ErrClassSelectionNotStudent
	}
	className = strings.TrimSpace(className)
	if !s.cfg.Campus.HasClass(className) {
		return nil, ErrUnknownClass
	}

	if err := s.provider.SaveClass(ctx, sess.Identity.ID, className); err != nil {
		s.logger.Error("保存班级失败", zap.String("user_id", sess.Identity.ID), zap.Error(err))
		return nil, err
	}

	sess.Identity.ClassName = className
	if err := s.repo.Session.Save(ctx, sess); err != nil {
		s.logger.Error("更新会话失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return NewSessionView(&sess.Identity), nil
}

// ────────────────────── Session ──────────────────────

func (s *authService) Authenticate(ctx context.Context, sessionID string) (*access.Identity, error) {
	sess, err := s.repo.Session.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询会话失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return &sess.Identity, nil
}

func (s *authService) Session(ctx context.Context, sessionID string) (*dto.SessionView, error) {
	id, err := s.Authenticate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return NewSessionView(id), nil
}

// ────────────────────── Refresh ──────────────────────

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.SessionResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}

	id, err := s.Authenticate(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.jwtMgr.GenerateAccessToken(id.ID, string(id.Role), claims.SessionID)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	return &dto.SessionResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		SessionView: *NewSessionView(id),
	}, nil
}

// ────────────────────── Classes ──────────────────────

func (s *authService) Classes() []string {
	out := make([]string, len(s.cfg.Campus.Classes))
	copy(out, s.cfg.Campus.Classes)
	return out
}

// NewSessionView 由身份推导会话视图（阶段、派生标志、能力集合）
func NewSessionView(id *access.Identity) *dto.SessionView {
	stage := access.Evaluate(id)
	view := &dto.SessionView{
		Stage:               string(stage),
		IsAuthenticated:     id != nil,
		NeedsClassSelection: stage == access.StageAwaitingClassSelection,
	}
	if id != nil {
		view.User = &dto.UserResponse{
			ID:        id.ID,
			Name:      id.Name,
			Email:     id.Email,
			Role:      string(id.Role),
			ClassName: id.ClassName,
		}
		view.Capabilities = access.For(*id).Map()
	}
	return view
}

// [自证通过] internal/service/auth_service.go
