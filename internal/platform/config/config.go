package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	APIPort   string `env:"API_PORT" envDefault:"3003"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	JWTSecret string `env:"JWT_SECRET,notEmpty"`
	JWTHours  int    `env:"JWT_EXPIRATION_HOURS" envDefault:"24"`
	// Secure cookies need TLS; local HTTP development may turn this off.
	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"true"`

	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`
	DBUser      string `env:"DB_USER" envDefault:"user"`
	DBPassword  string `env:"DB_PASSWORD" envDefault:"password"`
	DBName      string `env:"DB_NAME" envDefault:"hackr_api"`
	DBSslMode   string `env:"DB_SSLMODE" envDefault:"disable"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SimulationQueueName            string        `env:"SIMULATION_QUEUE_NAME" envDefault:"simulation_jobs_queue"`
	SimulationLockKey              string        `env:"SIMULATION_LOCK_KEY" envDefault:"simulation_job_lock"`
	SimulationLockTTLSeconds       int           `env:"SIMULATION_LOCK_TTL_SECONDS" envDefault:"600"`
	SimulationMaxWorkers           int           `env:"SIMULATION_MAX_WORKERS" envDefault:"50"`
	SimulationMaxRequestsPerWorker int           `env:"SIMULATION_MAX_REQUESTS_PER_WORKER" envDefault:"1000"`
	SimulationRequestTimeout       time.Duration `env:"SIMULATION_REQUEST_TIMEOUT" envDefault:"5s"`

	HunterAPIKey          string `env:"HUNTER_API_KEY"`
	HunterBaseURL         string `env:"HUNTER_BASE_URL" envDefault:"https://api.hunter.io"`
	SecurityTrailsAPIKey  string `env:"SECURITYTRAILS_API_KEY"`
	SecurityTrailsBaseURL string `env:"SECURITYTRAILS_BASE_URL" envDefault:"https://api.securitytrails.com"`
	SerpAPIKey            string `env:"SERPAPI_KEY"`
	SerpAPIBaseURL        string `env:"SERPAPI_BASE_URL" envDefault:"https://serpapi.com"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM"`

	DefaultAdminEmail    string `env:"DEFAULT_ADMIN_EMAIL" envDefault:"admin@example.com"`
	DefaultAdminPassword string `env:"DEFAULT_ADMIN_PASSWORD" envDefault:"adminpassword"`

	AuthRateLimit     float64       `env:"AUTH_RATE_LIMIT" envDefault:"1"`
	AuthRateBurst     int           `env:"AUTH_RATE_BURST" envDefault:"10"`
	AuditWriteTimeout time.Duration `env:"AUDIT_WRITE_TIMEOUT" envDefault:"5s"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, relying on environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.JWTHours <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRATION_HOURS must be positive, got %d", cfg.JWTHours)
	}
	if cfg.SimulationMaxWorkers <= 0 || cfg.SimulationMaxRequestsPerWorker <= 0 {
		return nil, fmt.Errorf("simulation limits must be positive")
	}
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTPUsername
	}

	return cfg, nil
}

func (c *Config) JWTExpiration() time.Duration {
	return time.Duration(c.JWTHours) * time.Hour
}

func (c *Config) SimulationLockTTL() time.Duration {
	return time.Duration(c.SimulationLockTTLSeconds) * time.Second
}

// DBConnStr prefers DATABASE_URL and otherwise assembles a keyword/value DSN.
func (c *Config) DBConnStr() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" sslmode=" + c.DBSslMode
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
