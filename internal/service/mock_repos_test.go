package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"campus-portal/backend/config"
	"campus-portal/backend/internal/access"
	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/repository"
	"campus-portal/backend/internal/seed"
)

// ── 测试辅助 ──

var errStorage = errors.New("storage unavailable")

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 24 * time.Hour,
			Provider:        config.ProviderMock,
			DemoPassword:    "demo",
			BcryptCost:      4,
			RequestTimeout:  time.Second,
		},
		Session: config.SessionConfig{Store: "memory", TTL: time.Hour},
		Campus:  config.CampusConfig{Classes: []string{"IT-A", "IT-B", "CSE-A", "CSE-B"}},
	}
}

// newTestRepo 以演示身份表创建内存 Repository
func newTestRepo() *repository.Repository {
	return repository.NewMemoryRepository(seed.DemoUsers())
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// 演示身份：1/3 为学生，2/4 为教师
func studentIdentity() access.Identity {
	return access.Identity{ID: "1", Name: "Priya Sharma", Email: seed.Student1Email, Role: access.RoleStudent, ClassName: "IT-B"}
}

func otherStudentIdentity() access.Identity {
	return access.Identity{ID: "3", Name: "Rohan Gupta", Email: seed.Student2Email, Role: access.RoleStudent, ClassName: "IT-A"}
}

func facultyIdentity() access.Identity {
	return access.Identity{ID: "2", Name: "Dr. Anjali Verma", Email: seed.Faculty1Email, Role: access.RoleFaculty}
}

var nop = zap.NewNop()

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{revoked: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = ttl
	return nil
}

func (m *mockBlacklist) has(jti string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[jti]
	return ok
}

// ── 故障集合：所有读写都返回 errStorage ──

type failingCollection[T any] struct{}

func (failingCollection[T]) Create(context.Context, *T) error { return errStorage }

func (failingCollection[T]) Get(context.Context, string) (*T, error) { return nil, errStorage }

func (failingCollection[T]) List(context.Context, repository.Query) ([]T, int64, error) {
	return nil, 0, errStorage
}

func (failingCollection[T]) Update(context.Context, string, func(*T) error) (*T, error) {
	return nil, errStorage
}

func (failingCollection[T]) Count(context.Context, ...repository.Scope) (int64, error) {
	return 0, errStorage
}

var _ repository.Collection[model.Note] = failingCollection[model.Note]{}
