package utils

import (
	"errors"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	OTP      OTPConfig
	SMS      SMSConfig
	CORS     CORSConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host        string
	Port        string
	Name        string
	User        string
	Password    string
	MaxConns    int32
	AutoMigrate bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	ExpiryHours int
}

// OTP store backends.
const (
	OTPStoreMemory   = "memory"
	OTPStoreRedis    = "redis"
	OTPStorePostgres = "postgres"
)

type OTPConfig struct {
	Store         string
	Expiry        time.Duration
	Retention     time.Duration
	SweepInterval time.Duration
	// ExposeCode returns the plaintext code in the send response. Never enable in production.
	ExposeCode bool
}

type SMSConfig struct {
	Provider string // log | http
	APIKey   string
	BaseURL  string
	Sender   string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// LoadConfig reads path (a dotenv file) when it exists and overlays the process environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "jaggery-store")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_EXPIRY_HOURS", 24)
	v.SetDefault("OTP_STORE", OTPStoreMemory)
	v.SetDefault("OTP_EXPIRY_MINUTES", 10)
	v.SetDefault("OTP_RETENTION_MINUTES", 60)
	v.SetDefault("OTP_SWEEP_INTERVAL_MINUTES", 5)
	v.SetDefault("SMS_PROVIDER", "log")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v.AutomaticEnv()

	debug := v.GetBool("DEBUG")
	exposeCode := debug
	if v.IsSet("OTP_EXPOSE_CODE") {
		exposeCode = v.GetBool("OTP_EXPOSE_CODE")
	}

	config := &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Port:    v.GetString("PORT"),
			Debug:   debug,
			LogPath: v.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			Name:        v.GetString("DB_NAME"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASS"),
			MaxConns:    v.GetInt32("DB_MAX_CONNS"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Session: SessionConfig{
			ExpiryHours: v.GetInt("SESSION_EXPIRY_HOURS"),
		},
		OTP: OTPConfig{
			Store:         strings.ToLower(v.GetString("OTP_STORE")),
			Expiry:        time.Duration(v.GetInt("OTP_EXPIRY_MINUTES")) * time.Minute,
			Retention:     time.Duration(v.GetInt("OTP_RETENTION_MINUTES")) * time.Minute,
			SweepInterval: time.Duration(v.GetInt("OTP_SWEEP_INTERVAL_MINUTES")) * time.Minute,
			ExposeCode:    exposeCode,
		},
		SMS: SMSConfig{
			Provider: strings.ToLower(v.GetString("SMS_PROVIDER")),
			APIKey:   v.GetString("SMS_API_KEY"),
			BaseURL:  v.GetString("SMS_BASE_URL"),
			Sender:   v.GetString("SMS_SENDER"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.OTP.Store {
	case OTPStoreMemory, OTPStoreRedis, OTPStorePostgres:
	default:
		return errors.New("OTP_STORE must be one of memory, redis, postgres")
	}
	if c.OTP.Expiry <= 0 {
		return errors.New("OTP_EXPIRY_MINUTES must be positive")
	}
	if c.OTP.SweepInterval <= 0 {
		return errors.New("OTP_SWEEP_INTERVAL_MINUTES must be positive")
	}
	if c.SMS.Provider != "log" && c.SMS.Provider != "http" {
		return errors.New("SMS_PROVIDER must be log or http")
	}
	return nil
}

// PostgresURL is the DSN form used by the migration runner.
func (d DatabaseConfig) PostgresURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
