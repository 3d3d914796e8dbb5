package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port      int             `mapstructure:"port"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// RateLimitConfig API 限流配置（依赖 Redis，未连接时放行）
type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// DatabaseConfig PostgreSQL 数据库配置（dataset.source=postgres 或导入工具使用）
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
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（结果缓存 + 限流）
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// DatasetConfig 数据集来源配置
type DatasetConfig struct {
	// Source 取值：http | file | s3 | postgres
	Source          string        `mapstructure:"source"`
	LMIURI          string        `mapstructure:"lmi_uri"`
	GraduatesURI    string        `mapstructure:"graduates_uri"`
	CrosswalkURI    string        `mapstructure:"crosswalk_uri"`
	InverseURI      string        `mapstructure:"inverse_uri"` // 可选，为空时由 crosswalk 反转得到
	HTTPTimeout     time.Duration `mapstructure:"http_timeout"`
	GraduateYear    int           `mapstructure:"graduate_year"` // 0 表示不过滤年份
	AllRegionsLabel string        `mapstructure:"all_regions_label"`
	LoadTimeout     time.Duration `mapstructure:"load_timeout"`
	S3              S3Config      `mapstructure:"s3"`
	Weights         WeightsConfig `mapstructure:"weights"`
}

// S3Config S3 / R2 兼容对象存储配置
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// WeightsConfig 学历权重来源配置
type WeightsConfig struct {
	Provider     string `mapstructure:"provider"`      // columns | file | synthetic
	Path         string `mapstructure:"path"`          // file 权重表路径
	Seed         int64  `mapstructure:"seed"`          // synthetic 种子
	FractionForm string `mapstructure:"fraction_form"` // 数据源占比列形式：auto（按列检测）| percent | fraction
}

// AuthConfig 运维令牌配置
// OperatorSecret 为空时数据集重新装载接口不做鉴权（本地单用户场景）
type AuthConfig struct {
	OperatorSecret string        `mapstructure:"operator_secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const rawBaseURL = "https://raw.githubusercontent.com/marky00100/suppdmndprgmtool/main/"

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 仅补充未设置的环境变量，文件不存在时忽略
	_ = godotenv.Load()

	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.rate_limit.limit", 120)
	v.SetDefault("server.rate_limit.window", "1m")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "program_gap")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", 60)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", "10m")

	v.SetDefault("dataset.source", "http")
	v.SetDefault("dataset.lmi_uri", rawBaseURL+"lmi_oews.csv")
	v.SetDefault("dataset.graduates_uri", rawBaseURL+"state_region_graduates.csv")
	v.SetDefault("dataset.crosswalk_uri", rawBaseURL+"CIP2020_SOC2018_Crosswalk.xlsx")
	v.SetDefault("dataset.inverse_uri", "")
	v.SetDefault("dataset.http_timeout", "30s")
	v.SetDefault("dataset.graduate_year", 2022)
	v.SetDefault("dataset.all_regions_label", "All Regions")
	v.SetDefault("dataset.load_timeout", "2m")
	v.SetDefault("dataset.s3.region", "auto")
	v.SetDefault("dataset.weights.provider", "columns")
	v.SetDefault("dataset.weights.seed", 42)
	v.SetDefault("dataset.weights.fraction_form", "auto")

	v.SetDefault("auth.operator_secret", "")
	v.SetDefault("auth.token_ttl", "24h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
	v.SetEnvPrefix("GAP")
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

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}

	switch c.Dataset.Source {
	case "http", "file":
		if c.Dataset.LMIURI == "" || c.Dataset.GraduatesURI == "" || c.Dataset.CrosswalkURI == "" {
			return fmt.Errorf("配置校验失败: dataset.lmi_uri / graduates_uri / crosswalk_uri 不能为空")
		}
	case "s3":
		if c.Dataset.S3.Bucket == "" {
			return fmt.Errorf("配置校验失败: dataset.source=s3 时 dataset.s3.bucket 不能为空")
		}
		if c.Dataset.LMIURI == "" || c.Dataset.GraduatesURI == "" || c.Dataset.CrosswalkURI == "" {
			return fmt.Errorf("配置校验失败: dataset.lmi_uri / graduates_uri / crosswalk_uri 不能为空")
		}
	case "postgres":
	default:
		return fmt.Errorf("配置校验失败: 不支持的 dataset.source %q", c.Dataset.Source)
	}

	switch c.Dataset.Weights.Provider {
	case "columns", "synthetic":
	case "file":
		if c.Dataset.Weights.Path == "" {
			return fmt.Errorf("配置校验失败: dataset.weights.provider=file 时 path 不能为空")
		}
	default:
		return fmt.Errorf("配置校验失败: 不支持的 dataset.weights.provider %q", c.Dataset.Weights.Provider)
	}
	switch c.Dataset.Weights.FractionForm {
	case "", "auto", "percent", "fraction":
	default:
		return fmt.Errorf("配置校验失败: 不支持的 dataset.weights.fraction_form %q", c.Dataset.Weights.FractionForm)
	}

	if strings.TrimSpace(c.Dataset.AllRegionsLabel) == "" {
		return fmt.Errorf("配置校验失败: dataset.all_regions_label 不能为空")
	}
	if c.Auth.OperatorSecret != "" && len(c.Auth.OperatorSecret) < 32 {
		return fmt.Errorf("配置校验失败: auth.operator_secret 长度不能少于 32 个字符")
	}
	if c.Redis.Enabled && c.Redis.CacheTTL < 0 {
		return fmt.Errorf("配置校验失败: redis.cache_ttl 不能为负数")
	}
	return nil
}
