package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Postgres
	HTTPServer
	Auth
	Mail
	Notifier
	Moderation
	AI
	Cache
	Storage
	MinIO
}

type Postgres struct {
	URL        string        `env:"DB_URL"`
	User       string        `env:"POSTGRES_USER" env-default:"postgres"`
	Pass       string        `env:"POSTGRES_PASSWORD" env-default:"postgres"`
	Host       string        `env:"POSTGRES_HOST" env-default:"localhost"`
	Port       string        `env:"POSTGRES_PORT" env-default:"5432"`
	DB         string        `env:"POSTGRES_DB" env-default:"posts"`
	Timeout    time.Duration `env:"POSTGRES_TIMEOUT" env-default:"5s"`
	Migrations string        `env:"POSTGRES_MIGRATIONS" env-default:"./migrations"`
}

// DSN prefers DB_URL and falls back to the discrete POSTGRES_* settings.
func (p Postgres) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf(
		"postgresql://%v:%v@%v:%v/%v?sslmode=disable", p.User, p.Pass, p.Host, p.Port, p.DB)
}

type HTTPServer struct {
	BindAddress     string        `env:"BIND_ADDRESS" env-default:"localhost"`
	BindPort        string        `env:"BIND_PORT" env-default:"8000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" env-default:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" env-default:"10s"`
	PublicURL       string        `env:"PUBLIC_URL" env-default:"http://localhost:8000/"`
}

type Auth struct {
	SecretKey       string        `env:"SECRET_KEY" env-required:"true"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" env-default:"168h"`
	EmailTokenTTL   time.Duration `env:"EMAIL_TOKEN_TTL" env-default:"24h"`
}

type Mail struct {
	Transport string        `env:"MAIL_TRANSPORT" env-default:"log"`
	Username  string        `env:"MAIL_USERNAME"`
	Password  string        `env:"MAIL_PASSWORD"`
	From      string        `env:"MAIL_FROM" env-default:"noreply@localhost"`
	FromName  string        `env:"MAIL_FROM_NAME" env-default:"Posts email System"`
	Server    string        `env:"MAIL_SERVER" env-default:"localhost"`
	Port      int           `env:"MAIL_PORT" env-default:"465"`
	SSL       bool          `env:"MAIL_SSL_TLS" env-default:"true"`
	SESRegion string        `env:"MAIL_SES_REGION" env-default:"us-east-1"`
	Timeout   time.Duration `env:"MAIL_TIMEOUT" env-default:"15s"`
}

type Notifier struct {
	Workers     int           `env:"NOTIFIER_WORKERS" env-default:"4"`
	MaxAttempts int           `env:"NOTIFIER_MAX_ATTEMPTS" env-default:"5"`
	Backoff     time.Duration `env:"NOTIFIER_BACKOFF" env-default:"2s"`
	MaxBackoff  time.Duration `env:"NOTIFIER_MAX_BACKOFF" env-default:"5m"`
	Poll        time.Duration `env:"NOTIFIER_POLL_INTERVAL" env-default:"1s"`
	TaskTimeout time.Duration `env:"NOTIFIER_TASK_TIMEOUT" env-default:"2m"`
}

type Moderation struct {
	PerspectiveURL string        `env:"PERSPECTIVE_API_URL"`
	PerspectiveKey string        `env:"PERSPECTIVE_API_KEY"`
	Threshold      float64       `env:"MODERATION_THRESHOLD" env-default:"0.5"`
	Words          []string      `env:"MODERATION_WORDS" env-separator:","`
	Timeout        time.Duration `env:"MODERATION_TIMEOUT" env-default:"5s"`
}

type AI struct {
	APIKey  string        `env:"AI_API_KEY"`
	BaseURL string        `env:"AI_BASE_URL"`
	Model   string        `env:"AI_MODEL" env-default:"gemini-1.5-flash"`
	Timeout time.Duration `env:"AI_TIMEOUT" env-default:"30s"`
}

type Cache struct {
	UserTTL time.Duration `env:"CACHE_USER_TTL" env-default:"15m"`
}

// Storage is the embedded badger directory holding the task queue and the
// key/value scratch store.
type Storage struct {
	BadgerPath string `env:"BADGER_PATH" env-default:"./data/badger"`
}

type MinIO struct {
	Enabled bool   `env:"MINIO_ENABLED" env-default:"false"`
	User    string `env:"MINIO_USER" env-default:"minioadmin"`
	Pass    string `env:"MINIO_PASSWORD" env-default:"minioadmin"`
	Host    string `env:"MINIO_HOST" env-default:"localhost"`
	Port    string `env:"MINIO_PORT" env-default:"9000"`
	Bucket  string `env:"MINIO_BUCKET" env-default:"posts"`
	Secure  bool   `env:"MINIO_SECURE" env-default:"false"`
}

// New overloads the process environment with the given dotenv file, when it
// exists, and reads the configuration from the environment.
func New(env string) (*Config, error) {
	conf := &Config{}

	if env != "" {
		if err := godotenv.Overload(env); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("godotenv.Overload: %v", err)
		}
	}

	if err := cleanenv.ReadEnv(conf); err != nil {
		return nil, fmt.Errorf("cleanenv.Readenv: %v", err)
	}

	return conf, nil
}
