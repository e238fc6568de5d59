package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"knowbase/internal/docparse"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	S3     S3Config
	Log    LogConfig
	LLM    LLMConfig
	Parser ParserConfig
	CORS   CORSConfig
	Queue  QueueConfig
	Email  EmailConfig
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// QueueConfig holds test generation worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
	JobTimeoutSecs   int `mapstructure:"job_timeout_secs"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ParserConfig holds document parsing limits.
type ParserConfig struct {
	MaxFileSizeMB   int64  `mapstructure:"max_file_size_mb"`
	RowPolicy       string `mapstructure:"row_policy"`
	AllCapsHeadings bool   `mapstructure:"all_caps_headings"`
	AllowDegraded   bool   `mapstructure:"allow_degraded"`
}

// MaxBytes returns the upload size limit in bytes.
func (p *ParserConfig) MaxBytes() int64 {
	return p.MaxFileSizeMB << 20
}

// LLMProviderConfig holds settings for a single question generation provider.
type LLMProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// LLMConfig holds generator settings with primary/secondary provider support.
type LLMConfig struct {
	// Legacy flat fields
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	Primary   LLMProviderConfig `mapstructure:"primary"`
	Secondary LLMProviderConfig `mapstructure:"secondary"`

	MaxTokens     int     `mapstructure:"max_tokens"`
	Temperature   float32 `mapstructure:"temperature"`
	ContentTokens int     `mapstructure:"content_tokens"`
	QuestionCount int     `mapstructure:"question_count"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (l *LLMConfig) PrimaryConfig() *LLMProviderConfig {
	if l.Primary.Provider != "" {
		return &l.Primary
	}
	return &LLMProviderConfig{
		Provider:     l.Provider,
		APIKey:       l.APIKey,
		BaseURL:      l.BaseURL,
		DefaultModel: l.DefaultModel,
		TimeoutSecs:  l.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (l *LLMConfig) SecondaryConfig() *LLMProviderConfig {
	if l.Secondary.Provider != "" {
		return &l.Secondary
	}
	return nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	AllowSignup  bool          `mapstructure:"allow_signup"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the KNOWBASE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("KNOWBASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allow_signup", true)

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "knowbase")
	v.SetDefault("db.password", "knowbase_secret")
	v.SetDefault("db.name", "knowbase_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "knowbase")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "knowbase-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "text")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 5)
	v.SetDefault("queue.concurrency", 3)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.job_timeout_secs", 300)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@knowbase.local")
	v.SetDefault("email.from_name", "Knowbase")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Parser defaults
	v.SetDefault("parser.max_file_size_mb", 20)
	v.SetDefault("parser.row_policy", "pad")
	v.SetDefault("parser.all_caps_headings", true)
	v.SetDefault("parser.allow_degraded", false)

	// LLM defaults (legacy flat)
	v.SetDefault("llm.provider", "mock")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.default_model", "gpt-4o-mini")
	v.SetDefault("llm.timeout_secs", 90)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.content_tokens", 6000)
	v.SetDefault("llm.question_count", 10)

	// LLM primary/secondary defaults
	v.SetDefault("llm.primary.provider", "")
	v.SetDefault("llm.primary.api_key", "")
	v.SetDefault("llm.primary.base_url", "")
	v.SetDefault("llm.primary.default_model", "")
	v.SetDefault("llm.primary.timeout_secs", 90)
	v.SetDefault("llm.secondary.provider", "")
	v.SetDefault("llm.secondary.api_key", "")
	v.SetDefault("llm.secondary.base_url", "")
	v.SetDefault("llm.secondary.default_model", "")
	v.SetDefault("llm.secondary.timeout_secs", 90)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                 "KNOWBASE_SERVER_PORT",
		"server.read_timeout":         "KNOWBASE_SERVER_READ_TIMEOUT",
		"server.write_timeout":        "KNOWBASE_SERVER_WRITE_TIMEOUT",
		"server.environment":          "KNOWBASE_SERVER_ENVIRONMENT",
		"db.host":                     "KNOWBASE_DB_HOST",
		"db.port":                     "KNOWBASE_DB_PORT",
		"db.user":                     "KNOWBASE_DB_USER",
		"db.password":                 "KNOWBASE_DB_PASSWORD",
		"db.name":                     "KNOWBASE_DB_NAME",
		"db.sslmode":                  "KNOWBASE_DB_SSLMODE",
		"db.max_open":                 "KNOWBASE_DB_MAX_OPEN",
		"db.max_idle":                 "KNOWBASE_DB_MAX_IDLE",
		"jwt.secret":                  "KNOWBASE_JWT_SECRET",
		"jwt.access_expiry":           "KNOWBASE_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":          "KNOWBASE_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                  "KNOWBASE_JWT_ISSUER",
		"s3.region":                   "KNOWBASE_S3_REGION",
		"s3.bucket":                   "KNOWBASE_S3_BUCKET",
		"s3.endpoint":                 "KNOWBASE_S3_ENDPOINT",
		"s3.access_key":               "KNOWBASE_S3_ACCESS_KEY",
		"s3.secret_key":               "KNOWBASE_S3_SECRET_KEY",
		"s3.presign_expiry":           "KNOWBASE_S3_PRESIGN_EXPIRY",
		"log.level":                   "KNOWBASE_LOG_LEVEL",
		"log.format":                  "KNOWBASE_LOG_FORMAT",
		"cors.allowed_origins":        "KNOWBASE_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs":    "KNOWBASE_QUEUE_POLL_INTERVAL_SECS",
		"queue.concurrency":           "KNOWBASE_QUEUE_CONCURRENCY",
		"queue.max_retries":           "KNOWBASE_QUEUE_MAX_RETRIES",
		"queue.job_timeout_secs":      "KNOWBASE_QUEUE_JOB_TIMEOUT_SECS",
		"email.provider":              "KNOWBASE_EMAIL_PROVIDER",
		"email.region":                "KNOWBASE_EMAIL_REGION",
		"email.from_address":          "KNOWBASE_EMAIL_FROM_ADDRESS",
		"email.from_name":             "KNOWBASE_EMAIL_FROM_NAME",
		"email.frontend_url":          "KNOWBASE_EMAIL_FRONTEND_URL",
		"parser.max_file_size_mb":     "KNOWBASE_PARSER_MAX_FILE_SIZE_MB",
		"parser.row_policy":           "KNOWBASE_PARSER_ROW_POLICY",
		"parser.all_caps_headings":    "KNOWBASE_PARSER_ALL_CAPS_HEADINGS",
		"parser.allow_degraded":       "KNOWBASE_PARSER_ALLOW_DEGRADED",
		"llm.provider":                "KNOWBASE_LLM_PROVIDER",
		"llm.api_key":                 "KNOWBASE_LLM_API_KEY",
		"llm.base_url":                "KNOWBASE_LLM_BASE_URL",
		"llm.default_model":           "KNOWBASE_LLM_DEFAULT_MODEL",
		"llm.timeout_secs":            "KNOWBASE_LLM_TIMEOUT_SECS",
		"llm.max_tokens":              "KNOWBASE_LLM_MAX_TOKENS",
		"llm.temperature":             "KNOWBASE_LLM_TEMPERATURE",
		"llm.content_tokens":          "KNOWBASE_LLM_CONTENT_TOKENS",
		"llm.question_count":          "KNOWBASE_LLM_QUESTION_COUNT",
		"llm.primary.provider":        "KNOWBASE_LLM_PRIMARY_PROVIDER",
		"llm.primary.api_key":         "KNOWBASE_LLM_PRIMARY_API_KEY",
		"llm.primary.base_url":        "KNOWBASE_LLM_PRIMARY_BASE_URL",
		"llm.primary.default_model":   "KNOWBASE_LLM_PRIMARY_DEFAULT_MODEL",
		"llm.primary.timeout_secs":    "KNOWBASE_LLM_PRIMARY_TIMEOUT_SECS",
		"llm.secondary.provider":      "KNOWBASE_LLM_SECONDARY_PROVIDER",
		"llm.secondary.api_key":       "KNOWBASE_LLM_SECONDARY_API_KEY",
		"llm.secondary.base_url":      "KNOWBASE_LLM_SECONDARY_BASE_URL",
		"llm.secondary.default_model": "KNOWBASE_LLM_SECONDARY_DEFAULT_MODEL",
		"llm.secondary.timeout_secs":  "KNOWBASE_LLM_SECONDARY_TIMEOUT_SECS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if KNOWBASE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("KNOWBASE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Parser = ParserConfig{
		MaxFileSizeMB:   v.GetInt64("parser.max_file_size_mb"),
		RowPolicy:       v.GetString("parser.row_policy"),
		AllCapsHeadings: v.GetBool("parser.all_caps_headings"),
		AllowDegraded:   v.GetBool("parser.allow_degraded"),
	}
	rowPolicy, err := docparse.ParseRowPolicy(cfg.Parser.RowPolicy)
	if err != nil {
		return nil, fmt.Errorf("parser.row_policy: %w", err)
	}
	cfg.Parser.RowPolicy = string(rowPolicy)

	cfg.LLM = LLMConfig{
		Provider:     v.GetString("llm.provider"),
		APIKey:       v.GetString("llm.api_key"),
		BaseURL:      v.GetString("llm.base_url"),
		DefaultModel: v.GetString("llm.default_model"),
		TimeoutSecs:  v.GetInt("llm.timeout_secs"),
		Primary: LLMProviderConfig{
			Provider:     v.GetString("llm.primary.provider"),
			APIKey:       v.GetString("llm.primary.api_key"),
			BaseURL:      v.GetString("llm.primary.base_url"),
			DefaultModel: v.GetString("llm.primary.default_model"),
			TimeoutSecs:  v.GetInt("llm.primary.timeout_secs"),
		},
		Secondary: LLMProviderConfig{
			Provider:     v.GetString("llm.secondary.provider"),
			APIKey:       v.GetString("llm.secondary.api_key"),
			BaseURL:      v.GetString("llm.secondary.base_url"),
			DefaultModel: v.GetString("llm.secondary.default_model"),
			TimeoutSecs:  v.GetInt("llm.secondary.timeout_secs"),
		},
		MaxTokens:     v.GetInt("llm.max_tokens"),
		Temperature:   float32(v.GetFloat64("llm.temperature")),
		ContentTokens: v.GetInt("llm.content_tokens"),
		QuestionCount: v.GetInt("llm.question_count"),
	}

	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
		JobTimeoutSecs:   v.GetInt("queue.job_timeout_secs"),
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}

	return cfg, nil
}
