package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the FlowCross client.
type Config struct {
	StorageDriver string `mapstructure:"storage_driver"`
	StorageDSN    string `mapstructure:"storage_dsn"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisHash     string `mapstructure:"redis_hash"`

	LogBackend string `mapstructure:"log_backend"`
	LogLevel   string `mapstructure:"log_level"`
	LogJSON    bool   `mapstructure:"log_json"`

	// AvatarBackend is "inline" (data URI in the session record) or "s3".
	AvatarBackend   string `mapstructure:"avatar_backend"`
	S3Bucket        string `mapstructure:"s3_bucket"`
	S3Region        string `mapstructure:"s3_region"`
	S3Endpoint      string `mapstructure:"s3_endpoint"`
	S3AccessKey     string `mapstructure:"s3_access_key"`
	S3SecretKey     string `mapstructure:"s3_secret_key"`
	S3PublicBaseURL string `mapstructure:"s3_public_base_url"`

	// HashPasswords switches the credential store from clear text to argon2id.
	HashPasswords bool `mapstructure:"hash_passwords"`
	// PremiumStub is the answer of the stubbed premium entitlement check.
	PremiumStub bool `mapstructure:"premium_stub"`

	PhoneVerifyDelay        time.Duration `mapstructure:"phone_verify_delay"`
	FlowIDVerifyDelay       time.Duration `mapstructure:"flowid_verify_delay"`
	FlowSecurityVerifyDelay time.Duration `mapstructure:"flowsecurity_verify_delay"`

	// KafkaBrokers enables the session event feed when non-empty.
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.StorageDriver = "sqlite"
	c.StorageDSN = "flowcross.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisHash = "flowcross"

	c.LogBackend = "slog"
	c.LogLevel = "info"

	c.AvatarBackend = "inline"
	c.S3Region = "us-east-1"

	c.PremiumStub = true

	c.PhoneVerifyDelay = 2 * time.Second
	c.FlowIDVerifyDelay = 1500 * time.Millisecond
	c.FlowSecurityVerifyDelay = 3 * time.Second

	c.KafkaTopic = "flowcross.sessions"
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case "sqlite", "postgres", "redis", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}

	switch c.AvatarBackend {
	case "inline":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("avatar backend s3 requires s3_bucket")
		}
	default:
		return fmt.Errorf("unknown avatar backend %q", c.AvatarBackend)
	}

	for name, d := range map[string]time.Duration{
		"phone_verify_delay":        c.PhoneVerifyDelay,
		"flowid_verify_delay":       c.FlowIDVerifyDelay,
		"flowsecurity_verify_delay": c.FlowSecurityVerifyDelay,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, .env, the config file,
// environment variables and flags, in that order.
func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.LoadDefaults()

	args := os.Args[1:]
	parseFile(cfg, args)
	parseEnv(cfg)
	parseFlags(cfg, args)
	return cfg
}
