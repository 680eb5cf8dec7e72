package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	App      AppConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// RedisConfig is optional. An empty Addr disables the distributed check-in lock
// and the in-process locker is used instead.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// PayrollConfig holds the engine-wide payroll knobs that are not per-store policy.
type PayrollConfig struct {
	Timezone               string
	FlatTaxRate            float64
	InsuranceTaxRate       *float64
	WeeklyAllowanceMinHour float64
	WeeklyAllowanceHours   float64
	BatchDay               int
	BatchConcurrency       int
	BatchInterval          time.Duration
}

func Load() (*Config, error) {
	// .env is optional; real deployments inject the environment directly.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "25"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := strconv.ParseInt(getEnv("DB_MIN_CONNS", "5"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "albamate"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	for _, origin := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			config.App.AllowedOrigins = append(config.App.AllowedOrigins, origin)
		}
	}

	accessTTL, err := time.ParseDuration(getEnv("JWT_ACCESS_TOKEN_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:         getEnv("JWT_SECRET_KEY", ""),
		AccessTokenTTL: accessTTL,
	}

	payroll, err := loadPayrollConfig()
	if err != nil {
		return nil, err
	}
	config.Payroll = payroll

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadPayrollConfig() (PayrollConfig, error) {
	flatRate, err := strconv.ParseFloat(getEnv("PAYROLL_FLAT_TAX_RATE", "0.033"), 64)
	if err != nil {
		return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_FLAT_TAX_RATE: %w", err)
	}

	var insuranceRate *float64
	if raw := getEnv("PAYROLL_INSURANCE_TAX_RATE", ""); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_INSURANCE_TAX_RATE: %w", err)
		}
		insuranceRate = &v
	}

	minHours, err := strconv.ParseFloat(getEnv("PAYROLL_WEEKLY_ALLOWANCE_MIN_HOURS", "15"), 64)
	if err != nil {
		return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_WEEKLY_ALLOWANCE_MIN_HOURS: %w", err)
	}

	allowanceHours, err := strconv.ParseFloat(getEnv("PAYROLL_WEEKLY_ALLOWANCE_HOURS", "8"), 64)
	if err != nil {
		return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_WEEKLY_ALLOWANCE_HOURS: %w", err)
	}

	batchDay, err := strconv.Atoi(getEnv("PAYROLL_BATCH_DAY", "1"))
	if err != nil {
		return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_BATCH_DAY: %w", err)
	}

	batchConcurrency, err := strconv.Atoi(getEnv("PAYROLL_BATCH_CONCURRENCY", "4"))
	if err != nil {
		return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_BATCH_CONCURRENCY: %w", err)
	}

	batchInterval, err := time.ParseDuration(getEnv("PAYROLL_BATCH_INTERVAL", "1h"))
	if err != nil {
		return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_BATCH_INTERVAL: %w", err)
	}

	return PayrollConfig{
		Timezone:               getEnv("PAYROLL_TIMEZONE", "Asia/Seoul"),
		FlatTaxRate:            flatRate,
		InsuranceTaxRate:       insuranceRate,
		WeeklyAllowanceMinHour: minHours,
		WeeklyAllowanceHours:   allowanceHours,
		BatchDay:               batchDay,
		BatchConcurrency:       batchConcurrency,
		BatchInterval:          batchInterval,
	}, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.MaxConns < 1 || c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS and DB_MAX_CONNS must satisfy 0 <= min <= max, max >= 1")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Payroll.FlatTaxRate < 0 || c.Payroll.FlatTaxRate >= 1 {
		return fmt.Errorf("PAYROLL_FLAT_TAX_RATE must be in [0, 1)")
	}
	if c.Payroll.InsuranceTaxRate != nil && (*c.Payroll.InsuranceTaxRate < 0 || *c.Payroll.InsuranceTaxRate >= 1) {
		return fmt.Errorf("PAYROLL_INSURANCE_TAX_RATE must be in [0, 1)")
	}
	if c.Payroll.BatchDay < 1 || c.Payroll.BatchDay > 28 {
		return fmt.Errorf("PAYROLL_BATCH_DAY must be between 1 and 28")
	}
	if c.Payroll.BatchConcurrency < 1 {
		return fmt.Errorf("PAYROLL_BATCH_CONCURRENCY must be positive")
	}
	if _, err := time.LoadLocation(c.Payroll.Timezone); err != nil {
		return fmt.Errorf("invalid PAYROLL_TIMEZONE: %w", err)
	}
	return nil
}

// Location returns the time zone used to cut calendar days.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Payroll.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
