package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Sheet    SheetConfig    `mapstructure:"sheet"`
	Export   ExportConfig   `mapstructure:"export"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig 关系库配置（postgres / mysql / sqlite）
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	Path            string `mapstructure:"path"` // 仅 sqlite 使用
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 分钟
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// DSN 按驱动生成连接字符串
func (c *DatabaseConfig) DSN() string {
	switch c.Driver {
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&multiStatements=true",
			c.User, c.Password, c.Host, c.Port, c.Name,
		)
	case "sqlite":
		// sqlite 默认不校验外键，按连接打开
		sep := "?"
		if strings.Contains(c.Path, "?") {
			sep = "&"
		}
		return c.Path + sep + "_pragma=foreign_keys(1)"
	default:
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
		)
	}
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	// 首次启动 users 表为空时写入的默认账号密码
	BootstrapAdminPassword      string `mapstructure:"bootstrap_admin_password"`
	BootstrapInstructorPassword string `mapstructure:"bootstrap_instructor_password"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SheetConfig 外部表格镜像配置
type SheetConfig struct {
	// Driver: google | xlsx | memory | disabled
	Driver          string        `mapstructure:"driver"`
	DocumentTitle   string        `mapstructure:"document_title"`
	CredentialsFile string        `mapstructure:"credentials_file"`
	XLSXPath        string        `mapstructure:"xlsx_path"`
	Timeout         time.Duration `mapstructure:"timeout"`
	// PullRefMode: label（按院系代码/专业名/课程名解析）| raw_id（按外键 ID 解析）
	PullRefMode string `mapstructure:"pull_ref_mode"`
}

// ExportConfig 导出配置
type ExportConfig struct {
	Filename  string `mapstructure:"filename"`
	SheetName string `mapstructure:"sheet_name"`
}

// SeedConfig 启动时补齐的字典数据
type SeedConfig struct {
	Departments []DepartmentSeed `mapstructure:"departments"`
}

// DepartmentSeed 院系种子（按 code 判断是否已存在）
type DepartmentSeed struct {
	Code string `mapstructure:"code"`
	Name string `mapstructure:"name"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_body_bytes", 10<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "univdb")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Manila")
	v.SetDefault("db.path", "univdb.sqlite")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.auto_migrate", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "8h")
	v.SetDefault("auth.bootstrap_admin_password", "admin123")
	v.SetDefault("auth.bootstrap_instructor_password", "instructor123")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("sheet.driver", "google")
	v.SetDefault("sheet.document_title", "Student Information")
	v.SetDefault("sheet.credentials_file", "credentials.json")
	v.SetDefault("sheet.xlsx_path", "student_information.xlsx")
	v.SetDefault("sheet.timeout", "15s")
	// 默认 label：拉取按推送写出的院系代码 / 专业名 / 课程名解析，推送后立即拉取不产生变更。
	// raw_id 沿用旧系统把三列当作内部 ID 的读法，但推送写出的是名称，往返后这些行会解析失败。
	v.SetDefault("sheet.pull_ref_mode", "label")

	v.SetDefault("export.filename", "students.xlsx")
	v.SetDefault("export.sheet_name", "Students")

	v.SetDefault("seed.departments", []map[string]string{
		{"code": "CS", "name": "Computer Science"},
		{"code": "IT", "name": "Information Technology"},
		{"code": "ENG", "name": "Engineering"},
		{"code": "BA", "name": "Business Administration"},
		{"code": "EDU", "name": "Education"},
	})

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
	v.SetEnvPrefix("RECORDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
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

	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("配置校验失败: db.driver 不支持 %q", c.Database.Driver)
	}

	switch c.Sheet.Driver {
	case "google":
		if c.Sheet.CredentialsFile == "" {
			return fmt.Errorf("配置校验失败: sheet.credentials_file 不能为空")
		}
		if c.Sheet.DocumentTitle == "" {
			return fmt.Errorf("配置校验失败: sheet.document_title 不能为空")
		}
	case "xlsx":
		if c.Sheet.XLSXPath == "" {
			return fmt.Errorf("配置校验失败: sheet.xlsx_path 不能为空")
		}
	case "memory", "disabled":
	default:
		return fmt.Errorf("配置校验失败: sheet.driver 不支持 %q", c.Sheet.Driver)
	}

	switch c.Sheet.PullRefMode {
	case "label", "raw_id":
	default:
		return fmt.Errorf("配置校验失败: sheet.pull_ref_mode 必须为 label 或 raw_id")
	}
	if c.Sheet.Timeout <= 0 {
		return fmt.Errorf("配置校验失败: sheet.timeout 必须大于 0")
	}
	return nil
}
