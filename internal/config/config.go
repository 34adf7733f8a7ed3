package config

import "time"

type Config struct {
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Kafka       KafkaConfig     `mapstructure:"kafka"`
	JWT         JWTConfig       `mapstructure:"jwt"`
	MFA         MFAConfig       `mapstructure:"mfa"`
	Security    SecurityConfig  `mapstructure:"security"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	Source  string   `mapstructure:"source"`
}

type JWTConfig struct {
	// AccessTokenSecret verifies bearer tokens minted by the external
	// session provider. This service validates sessions, it never issues
	// primary credentials.
	AccessTokenSecret string `mapstructure:"access_token_secret"`
	Issuer            string `mapstructure:"issuer"`

	// ElevationSecret signs the mfa_verified cookie token.
	ElevationSecret string        `mapstructure:"elevation_secret"`
	ElevationTTL    time.Duration `mapstructure:"elevation_ttl"`
}

type MFAConfig struct {
	TOTPIssuerName string `mapstructure:"totp_issuer_name"`
	// SecretEncryptionKey is the hex-encoded 32-byte AES key protecting TOTP
	// seeds at rest.
	SecretEncryptionKey string        `mapstructure:"secret_encryption_key"`
	CodeTTL             time.Duration `mapstructure:"code_ttl"`
	StoreTimeout        time.Duration `mapstructure:"store_timeout"`
}

// RateLimitRule is one fixed-window limit.
type RateLimitRule struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

type RateLimitConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	VerifyPerUser RateLimitRule `mapstructure:"verify_per_user"`
	SendPerUser   RateLimitRule `mapstructure:"send_per_user"`
	GeneralIP     RateLimitRule `mapstructure:"general_ip"`
}

type SecurityConfig struct {
	RateLimiting RateLimitConfig `mapstructure:"rate_limiting"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	ServiceName string        `mapstructure:"service_name"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
}
