package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMinio = "minio"
	DriverAWS   = "aws"
)

type Config struct {
	AppPort     string        `mapstructure:"APP_PORT"`
	CallTimeout time.Duration `mapstructure:"CALL_TIMEOUT"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     int    `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBScheme   string `mapstructure:"DB_SCHEME"`

	// --- S3 ---
	S3Driver    string `mapstructure:"S3_DRIVER"`
	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3Region    string `mapstructure:"S3_REGION"`
	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`
	S3UseSSL    bool   `mapstructure:"S3_USE_SSL"`
	S3PathStyle bool   `mapstructure:"S3_PATH_STYLE"`
	S3Folder    string `mapstructure:"S3_FOLDER"`

	// --- загрузки ---
	HashAlgorithm  string `mapstructure:"HASH_ALGORITHM"`
	MaxUploadBytes int64  `mapstructure:"MAX_UPLOAD_BYTES"`

	// --- Redis ---
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	ListCacheTTL  time.Duration `mapstructure:"LIST_CACHE_TTL"`
}

var defaults = map[string]any{
	"APP_PORT":         "8080",
	"CALL_TIMEOUT":     "10s",
	"DB_PORT":          5432,
	"DB_SCHEME":        "public",
	"S3_DRIVER":        DriverMinio,
	"S3_REGION":        "us-east-1",
	"S3_FOLDER":        "myBucket",
	"HASH_ALGORITHM":   "sha256",
	"MAX_UPLOAD_BYTES": 1 << 20,
	"LIST_CACHE_TTL":   "30s",
}

func mask(sb *strings.Builder, name, val string) {
	if val != "" {
		fmt.Fprintf(sb, "  %s: ********\n", name)
	} else {
		fmt.Fprintf(sb, "  %s: (empty)\n", name)
	}
}

// String реализует интерфейс Stringer, секреты маскируются.
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  AppPort: %s\n", c.AppPort)
	fmt.Fprintf(&sb, "  CallTimeout: %s\n", c.CallTimeout)
	fmt.Fprintf(&sb, "  DBHost: %s\n", c.DBHost)
	fmt.Fprintf(&sb, "  DBPort: %d\n", c.DBPort)
	fmt.Fprintf(&sb, "  DBUser: %s\n", c.DBUser)
	fmt.Fprintf(&sb, "  DBName: %s\n", c.DBName)
	fmt.Fprintf(&sb, "  DBScheme: %s\n", c.DBScheme)
	mask(&sb, "DBPassword", c.DBPassword)

	fmt.Fprintf(&sb, "  S3Driver: %s\n", c.S3Driver)
	fmt.Fprintf(&sb, "  S3Endpoint: %s\n", c.S3Endpoint)
	fmt.Fprintf(&sb, "  S3Region: %s\n", c.S3Region)
	fmt.Fprintf(&sb, "  S3Bucket: %s\n", c.S3Bucket)
	fmt.Fprintf(&sb, "  S3Folder: %s\n", c.S3Folder)
	mask(&sb, "S3AccessKey", c.S3AccessKey)
	mask(&sb, "S3SecretKey", c.S3SecretKey)
	fmt.Fprintf(&sb, "  S3UseSSL: %v\n", c.S3UseSSL)
	fmt.Fprintf(&sb, "  S3PathStyle: %v\n", c.S3PathStyle)

	fmt.Fprintf(&sb, "  HashAlgorithm: %s\n", c.HashAlgorithm)
	fmt.Fprintf(&sb, "  MaxUploadBytes: %d\n", c.MaxUploadBytes)

	fmt.Fprintf(&sb, "  RedisAddr: %s\n", c.RedisAddr)
	fmt.Fprintf(&sb, "  RedisDB: %d\n", c.RedisDB)
	mask(&sb, "RedisPassword", c.RedisPassword)
	fmt.Fprintf(&sb, "  ListCacheTTL: %s\n", c.ListCacheTTL)
	return sb.String()
}

// Load читает envFile (если он есть) и переменные окружения.
// Пустой envFile означает ".env" в текущем каталоге.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	keys := []string{
		"APP_PORT", "CALL_TIMEOUT",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SCHEME",
		"S3_DRIVER", "S3_ENDPOINT", "S3_REGION", "S3_BUCKET", "S3_ACCESS_KEY", "S3_SECRET_KEY",
		"S3_USE_SSL", "S3_PATH_STYLE", "S3_FOLDER",
		"HASH_ALGORITHM", "MAX_UPLOAD_BYTES",
		"REDIS_ADDR", "REDIS_DB", "REDIS_PASSWORD", "LIST_CACHE_TTL",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.S3Bucket == "" {
		errs = append(errs, errors.New("S3_BUCKET is required"))
	}
	switch c.S3Driver {
	case DriverMinio:
		if c.S3Endpoint == "" {
			errs = append(errs, errors.New("S3_ENDPOINT is required for the minio driver"))
		}
	case DriverAWS:
	default:
		errs = append(errs, fmt.Errorf("S3_DRIVER must be %q or %q, got %q", DriverMinio, DriverAWS, c.S3Driver))
	}
	if strings.Contains(c.S3Folder, "/") || c.S3Folder == "" {
		errs = append(errs, fmt.Errorf("S3_FOLDER must be a single non-empty segment, got %q", c.S3Folder))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
