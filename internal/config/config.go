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

type Config struct {
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`
	ServerURL   string `env:"-"`

	// Долговременное хранилище: путь к SQLite или postgres:// DSN.
	ClientDBPath string `env:"CLIENT_DB_PATH"`
	TokenFile    string `env:"TOKEN_FILE"`

	// Сессионное хранилище: Redis, если задан адрес, иначе память процесса.
	SessionRedisAddr string        `env:"SESSION_REDIS_ADDR"`
	SessionTTL       time.Duration `env:"SESSION_TTL"`
	SessionID        string        `env:"SESSION_ID"`

	DraftDebounceMs int    `env:"DRAFT_DEBOUNCE_MS"`
	ReturnPath      string `env:"RETURN_PATH"`

	Version bool `env:"-"` // только флаг
}

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// флаги перекрывают значения из env
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "адрес сервера площадки (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "использовать https")
	flag.StringVar(&cfg.ClientDBPath, "client-db", cfg.ClientDBPath, "путь к SQLite или postgres:// DSN для черновиков")
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "файл с токеном авторизации")
	flag.StringVar(&cfg.SessionRedisAddr, "session-redis", cfg.SessionRedisAddr, "адрес Redis для сессионных данных")
	flag.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "время жизни сессионных данных в Redis")
	flag.StringVar(&cfg.SessionID, "session-id", cfg.SessionID, "идентификатор сессии в Redis")
	flag.IntVar(&cfg.DraftDebounceMs, "debounce-ms", cfg.DraftDebounceMs, "задержка сохранения черновика, мс")
	flag.StringVar(&cfg.ReturnPath, "return-path", cfg.ReturnPath, "куда вернуться после входа")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "показать версию и выйти")

	flag.Parse()

	// BaseURL только в виде host:port, иначе значение по умолчанию
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:3000"
	}
	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		dir, _ = os.UserHomeDir()
	}
	dir = filepath.Join(dir, "AidDesk")
	if cfg.ClientDBPath == "" {
		cfg.ClientDBPath = filepath.Join(dir, "drafts.db")
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = filepath.Join(dir, "auth_token")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	if cfg.SessionID == "" {
		cfg.SessionID = "default"
	}
	if cfg.DraftDebounceMs <= 0 {
		cfg.DraftDebounceMs = 250
	}
	if cfg.ReturnPath == "" {
		cfg.ReturnPath = "/applications/new"
	}
	return cfg
}

// Debounce — задержка сохранения черновика.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DraftDebounceMs) * time.Millisecond
}
