package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"campus-portal/backend/config"
	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/repository"
)

// IdentityProvider 身份来源：mock 演示表或 profiles 表
type IdentityProvider interface {
	// Authenticate 校验凭据，失败返回 ErrInvalidCredentials
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	// Register 追加新身份，邮箱（忽略大小写）重复时返回 ErrDuplicateAccount
	Register(ctx context.Context, user *model.User, password string) error
	// SaveClass 持久化学生所选班级；mock 提供方的班级只存在于会话中
	SaveClass(ctx context.Context, userID, className string) error
}

// NewIdentityProvider 按 auth.provider 选择实现
func NewIdentityProvider(cfg *config.AuthConfig, users repository.UserRepository) IdentityProvider {
	if cfg.Provider == config.ProviderMock {
		return &mockProvider{users: users, demoPassword: cfg.DemoPassword}
	}
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &databaseProvider{users: users, cost: cost}
}

func register(ctx context.Context, users repository.UserRepository, user *model.User) error {
	if _, err := users.GetByEmail(ctx, user.Email); err == nil {
		return ErrDuplicateAccount
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrDuplicateAccount
		}
		return err
	}
	return nil
}

// ── mock ──

// mockProvider 邮箱忽略大小写匹配注入的身份表，密码与共享演示密码逐字比较
type mockProvider struct {
	users        repository.UserRepository
	demoPassword string
}

func (p *mockProvider) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := p.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if password != p.demoPassword {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (p *mockProvider) Register(ctx context.Context, user *model.User, _ string) error {
	return register(ctx, p.users, user)
}

func (p *mockProvider) SaveClass(context.Context, string, string) error { return nil }

// ── database ──

type databaseProvider struct {
	users repository.UserRepository
	cost  int
}

func (p *databaseProvider) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := p.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (p *databaseProvider) Register(ctx context.Context, user *model.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return register(ctx, p.users, user)
}

func (p *databaseProvider) SaveClass(ctx context.Context, userID, className string) error {
	return p.users.UpdateClass(ctx, userID, className)
}
