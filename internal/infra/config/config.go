package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	JWT       JWTSettings       `mapstructure:"jwt"`
	Google    GoogleSettings    `mapstructure:"google"`
	Session   SessionSettings   `mapstructure:"session"`
	Uploads   UploadsSettings   `mapstructure:"uploads"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Argon2    Argon2Settings    `mapstructure:"argon2"`
}

type AppSettings struct {
	Name        string `mapstructure:"name"`
	Env         string `mapstructure:"env"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	FrontendURL string `mapstructure:"frontend_url"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures Redis connection and TLS.
type RedisSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
}

// KafkaSettings configures the Kafka producer.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
	Async       bool     `mapstructure:"async"`
}

// JWTSettings configures bearer token signing.
type JWTSettings struct {
	Secret         string        `mapstructure:"secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// GoogleSettings configures the federated sign-in provider.
type GoogleSettings struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// SessionSettings configures the federated session cookie and store.
type SessionSettings struct {
	CookieName   string        `mapstructure:"cookie_name"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	TTL          time.Duration `mapstructure:"ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// UploadsSettings configures profile-photo storage.
type UploadsSettings struct {
	Directory     string `mapstructure:"directory"`
	MaxPhotoBytes int64  `mapstructure:"max_photo_bytes"`
}

// RateLimitSettings configures the login rate-limit window.
type RateLimitSettings struct {
	WindowDuration   time.Duration `mapstructure:"window_duration"`
	LoginMaxAttempts int           `mapstructure:"login_max_attempts"`
}

// Argon2Settings configures Argon2id password hashing parameters.
type Argon2Settings struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
	SaltLength  uint32 `mapstructure:"salt_length"`
	KeyLength   uint32 `mapstructure:"key_length"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("REDIBO")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.frontend_url",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.async",
		"jwt.secret",
		"jwt.issuer",
		"jwt.access_token_ttl",
		"google.client_id",
		"google.client_secret",
		"google.redirect_url",
		"session.cookie_name",
		"session.cookie_secure",
		"session.ttl",
		"session.key_prefix",
		"uploads.directory",
		"uploads.max_photo_bytes",
		"rate_limit.window_duration",
		"rate_limit.login_max_attempts",
		"argon2.memory",
		"argon2.iterations",
		"argon2.parallelism",
		"argon2.salt_length",
		"argon2.key_length",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "redibo-identity")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 3001)
	v.SetDefault("app.frontend_url", "http://localhost:3000")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "redibo")
	v.SetDefault("postgres.password", "redibo_password")
	v.SetDefault("postgres.database", "redibo")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "identity")
	v.SetDefault("kafka.async", true)

	v.SetDefault("jwt.issuer", "redibo-identity")
	v.SetDefault("jwt.access_token_ttl", "24h")

	v.SetDefault("session.cookie_name", "redibo_session")
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.key_prefix", "identity:session")

	v.SetDefault("uploads.directory", "uploads")
	v.SetDefault("uploads.max_photo_bytes", 2*1024*1024)

	v.SetDefault("rate_limit.window_duration", "1m")
	v.SetDefault("rate_limit.login_max_attempts", 5)

	v.SetDefault("argon2.memory", 65536) // 64 MB
	v.SetDefault("argon2.iterations", 3)
	v.SetDefault("argon2.parallelism", 4)
	v.SetDefault("argon2.salt_length", 16)
	v.SetDefault("argon2.key_length", 32)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "REDIBO_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
