package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-16"

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("CAMPUS_AUTH_JWT_SECRET", testSecret)
	t.Setenv("CAMPUS_SERVER_PORT", "9090")

	cfg, err := loadFromDir(t, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, testSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 10*time.Second, cfg.Auth.RequestTimeout)
	assert.Equal(t, ProviderDatabase, cfg.Auth.Provider)
	assert.Equal(t, "database", cfg.Timetable.Store)
	assert.True(t, cfg.Campus.HasClass("IT-B"))
	assert.False(t, cfg.Campus.HasClass("MECH-A"))
}

// loadFromDir 在 dir 中不放配置文件，只走默认值与环境变量
func loadFromDir(t *testing.T, dir string) (*Config, error) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return Load("")
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portal.yaml")
	content := `
server:
  port: 8181
auth:
  jwt_secret: "` + testSecret + `"
  provider: mock
  access_token_ttl: 5m
storage:
  driver: memory
session:
  store: memory
timetable:
  store: sqlite
  sqlite_path: /tmp/tt.db
campus:
  classes: [IT-A, IT-B]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CAMPUS_AUTH_JWT_SECRET", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, ProviderMock, cfg.Auth.Provider)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "sqlite", cfg.Timetable.Store)
	assert.Equal(t, []string{"IT-A", "IT-B"}, cfg.Campus.Classes)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	dotEnv := "CAMPUS_AUTH_JWT_SECRET=" + testSecret + "\nCAMPUS_LOG_LEVEL=debug\nCAMPUS_SERVER_PORT=7000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotEnv), 0o600))

	// godotenv 直接写进程环境，测试结束后手动清理
	for _, key := range []string{"CAMPUS_AUTH_JWT_SECRET", "CAMPUS_LOG_LEVEL"} {
		_, existed := os.LookupEnv(key)
		require.False(t, existed, "%s 不应预先存在", key)
		key := key
		t.Cleanup(func() { _ = os.Unsetenv(key) })
	}
	t.Setenv("CAMPUS_SERVER_PORT", "9191")

	cfg, err := loadFromDir(t, dir)
	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9191, cfg.Server.Port, "已有环境变量优先于 .env")
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("CAMPUS_AUTH_JWT_SECRET", "")
	_, err := loadFromDir(t, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func validConfig() Config {
	return Config{
		Server:    ServerConfig{Port: 8080},
		Auth:      AuthConfig{JWTSecret: testSecret, Provider: ProviderDatabase},
		Session:   SessionConfig{Store: "redis"},
		Storage:   StorageConfig{Driver: "database"},
		Timetable: TimetableConfig{Store: "database"},
		Campus:    CampusConfig{Classes: []string{"IT-A"}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"合法配置", func(c *Config) {}, ""},
		{"密钥为空", func(c *Config) { c.Auth.JWTSecret = "" }, "jwt_secret 不能为空"},
		{"密钥过短", func(c *Config) { c.Auth.JWTSecret = "short" }, "16"},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"未知提供方", func(c *Config) { c.Auth.Provider = "ldap" }, "auth.provider"},
		{"未知会话存储", func(c *Config) { c.Session.Store = "etcd" }, "session.store"},
		{"未知存储驱动", func(c *Config) { c.Storage.Driver = "mongo" }, "storage.driver"},
		{"未知课表存储", func(c *Config) { c.Timetable.Store = "file" }, "timetable.store"},
		{"数据库提供方需要数据库存储", func(c *Config) { c.Storage.Driver = "memory" }, "storage.driver=database"},
		{"演示提供方可用内存存储", func(c *Config) {
			c.Auth.Provider = ProviderMock
			c.Storage.Driver = "memory"
		}, ""},
		{"班级为空", func(c *Config) { c.Campus.Classes = nil }, "campus.classes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "campus", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=campus sslmode=disable TimeZone=UTC", c.DSN())
}
