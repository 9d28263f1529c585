package config

import (
	"os"
	"strconv"
)

// Config medml-backend（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	Database DatabaseConfig
	Redis    struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	JWT struct {
		Secret         string
		AccessTTLMin   int
		RefreshTTLDays int
	}
	Models ModelsConfig
	Gemini GeminiConfig
}

// DatabaseConfig PostgreSQL 配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// ModelsConfig where serialized classifiers live
type ModelsConfig struct {
	Dir     string // directory with <disease>.json descriptors + model files
	Version string // model-version tag written into every snapshot
}

// GeminiConfig free-text recommendation generator (optional; skipped when
// the API key is empty)
type GeminiConfig struct {
	APIKey   string
	Endpoint string
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "medml")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "20"), 20)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.JWT.Secret = getEnv("JWT_SECRET_KEY", "dev-jwt-secret-key")
	cfg.JWT.AccessTTLMin = parseInt(getEnv("JWT_ACCESS_TOKEN_EXPIRES_MIN", "15"), 15)
	cfg.JWT.RefreshTTLDays = parseInt(getEnv("JWT_REFRESH_TOKEN_EXPIRES_DAYS", "30"), 30)

	cfg.Models.Dir = getEnv("MODELS_DIR", "models_store")
	cfg.Models.Version = getEnv("MODEL_VERSION", "v1.0")

	cfg.Gemini.APIKey = getEnv("GEMINI_API_KEY", "")
	cfg.Gemini.Endpoint = getEnv("GEMINI_ENDPOINT",
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent")

	return cfg
}

// Risk threshold defaults (inclusive lower bounds).
const (
	DefaultMediumThreshold = 0.35
	DefaultHighThreshold   = 0.70
)

// RiskThresholds is read from the environment on every call so operators
// can retune categorization without restarting the service.
func (c *Config) RiskThresholds() (medium, high float64) {
	medium = parseFloat(getEnv("RISK_MEDIUM_THRESHOLD", ""), DefaultMediumThreshold)
	high = parseFloat(getEnv("RISK_HIGH_THRESHOLD", ""), DefaultHighThreshold)
	return medium, high
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Database +
		" sslmode=" + c.SSLMode
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseFloat(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
