package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	API     APIConfig
	Session SessionConfig
	Storage StorageConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Stub    StubConfig
}

// APIConfig points the front end at the marketplace backend.
type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL, default=http://localhost:8083/api"`
	Timeout time.Duration `env:"API_TIMEOUT,  default=10s"`
}

type SessionConfig struct {
	TokenTTL         time.Duration `env:"SESSION_TOKEN_TTL,     default=24h"`
	CookieName       string        `env:"SESSION_COOKIE,        default=storefront_sid"`
	CookieSecure     bool          `env:"SESSION_COOKIE_SECURE, default=false"`
	LoginPath        string        `env:"LOGIN_PATH,            default=/login"`
	UnauthorizedPath string        `env:"UNAUTHORIZED_PATH,     default=/unauthorized"`

	// VisitorIdle releases a visitor's in-memory stack after this long
	// without requests; its credential stays in storage.
	VisitorIdle   time.Duration `env:"SESSION_VISITOR_IDLE,   default=30m"`
	MaxVisitors   int           `env:"SESSION_MAX_VISITORS,   default=10000"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL, default=1m"`
}

// StorageConfig selects where credentials are persisted: memory, redis or mongo.
type StorageConfig struct {
	Driver    string `env:"TOKEN_STORAGE,    default=memory"`
	KeyPrefix string `env:"TOKEN_KEY_PREFIX, default=storefront"`
}

type MongoConfig struct {
	URI        string `env:"MONGO_URI,        default=mongodb://localhost:27017"`
	Database   string `env:"MONGO_DB,         default=storefront"`
	Collection string `env:"MONGO_COLLECTION, default=session_entries"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// StubConfig configures the bundled development backend.
type StubConfig struct {
	Port      string `env:"STUB_PORT,       default=8083"`
	JWTSecret string `env:"STUB_JWT_SECRET, default=storefront-dev-secret"`
}

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
)

// IsDevelopment reports whether the process runs with ENV=development.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through the given lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverRedis, DriverMongo:
	default:
		return fmt.Errorf("unsupported TOKEN_STORAGE %q", c.Storage.Driver)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}
	if c.Session.TokenTTL <= 0 {
		return fmt.Errorf("SESSION_TOKEN_TTL must be positive")
	}
	if c.Session.VisitorIdle <= 0 || c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_VISITOR_IDLE and SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.Session.MaxVisitors < 0 {
		return fmt.Errorf("SESSION_MAX_VISITORS must not be negative")
	}
	if len(c.Session.LoginPath) == 0 || c.Session.LoginPath[0] != '/' {
		return fmt.Errorf("LOGIN_PATH must be an absolute path")
	}
	return nil
}
