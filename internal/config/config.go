package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

type Config struct {
	// Server-side settings
	DatabaseDSN     string        `env:"DATABASE_URI"`
	AuthSecret      string        `env:"AUTH_SECRET"`
	TokenTTL        time.Duration `env:"TOKEN_TTL"`
	AuthConfirmUser bool          `env:"AUTH_CONFIRM_USER" envDefault:"true"`
	LinkTTL         time.Duration `env:"LINK_TTL"`
	FileMaxSizeMB   int           `env:"FILE_MAX_MB"`
	RateLimit       int           `env:"RATE_LIMIT"`
	CORSOrigin      string        `env:"CORS_ORIGIN"`
	TLSCertFile     string        `env:"TLS_CERT_FILE"`
	TLSKeyFile      string        `env:"TLS_KEY_FILE"`

	// Blob storage
	StorageBackend string `env:"STORAGE_BACKEND"`
	StorageDir     string `env:"STORAGE_DIR"`
	PublicURL      string `env:"PUBLIC_URL"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3Region       string `env:"S3_REGION"`
	S3Endpoint     string `env:"S3_ENDPOINT"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL string `env:"-"`
	TokenFile string `env:"TOKEN_FILE"`
	Version   bool   `env:"-"` // show client version and exit (flag only)
}

// FileMaxBytes лимит размера загружаемого файла в байтах.
func (c *Config) FileMaxBytes() int64 {
	return int64(c.FileMaxSizeMB) * 1024 * 1024
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// значения из env становятся дефолтами флагов, флаги их перекрывают
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres:// или путь/DSN sqlite)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "время жизни токена доступа")
	flag.DurationVar(&cfg.LinkTTL, "link-ttl", cfg.LinkTTL, "время жизни подписанной ссылки на файл")
	flag.IntVar(&cfg.FileMaxSizeMB, "file-max-mb", cfg.FileMaxSizeMB, "максимальный размер файла, МБ")
	flag.IntVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "лимит запросов в минуту с одного IP")
	flag.StringVar(&cfg.StorageBackend, "storage", cfg.StorageBackend, "хранилище файлов: local | s3")
	flag.StringVar(&cfg.StorageDir, "storage-dir", cfg.StorageDir, "каталог локального хранилища")
	flag.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "S3 bucket")
	flag.StringVar(&cfg.S3Endpoint, "s3-endpoint", cfg.S3Endpoint, "S3 endpoint (например, http://127.0.0.1:9000)")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "address of the FileVault server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (server: serve TLS, client: use https scheme)")
	// Client flags
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to auth token file (client)")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	// Defaults
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "file:filevault.db?_pragma=foreign_keys(1)"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.LinkTTL <= 0 {
		cfg.LinkTTL = time.Hour
	}
	if cfg.FileMaxSizeMB <= 0 {
		cfg.FileMaxSizeMB = 50
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 100
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "https://localhost:5173"
	}
	if cfg.StorageBackend != StorageS3 {
		cfg.StorageBackend = StorageLocal
	}
	if cfg.StorageDir == "" {
		cfg.StorageDir = filepath.Join("data", "blobs")
	}
	if cfg.S3Bucket == "" {
		cfg.S3Bucket = "files"
	}
	if cfg.S3Region == "" {
		cfg.S3Region = "us-east-1"
	}
	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}
	// ссылки локального хранилища строятся от публичного адреса сервера
	if cfg.PublicURL == "" {
		cfg.PublicURL = cfg.ServerURL
	}

	// Fill client defaults if empty
	if cfg.TokenFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir, _ = os.UserHomeDir()
		}
		cfg.TokenFile = filepath.Join(dir, "FileVault", "auth_token")
	}

	return cfg
}
