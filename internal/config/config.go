package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

type AppConfig struct {
	Env     string `yaml:"env" env:"ENV" env-default:"prod"`
	BaseDir string `yaml:"base_dir" env:"BASE_DIR" env-default:"./tdlib-bot"`

	ApiID    int32  `yaml:"api_id" env:"TELEGRAM_API_ID"`
	ApiHash  string `yaml:"api_hash" env:"TELEGRAM_API_HASH"`
	BotToken string `yaml:"bot_token" env:"TOKEN"`

	// AdminID: единственный получатель сообщений пользователей
	AdminID int64 `yaml:"admin_id" env:"ADMINS"`
	// ReportChatID: куда слать отчёты об ошибках, при 0 только лог
	ReportChatID int64 `yaml:"report_chat_id" env:"REPORT_CHAT_ID"`

	StartMediaURL string        `yaml:"start_media_url" env:"START_MEDIA_URL" env-default:"https://telegra.ph/file/0be5e826d1bc2f49d919d.jpg"`
	SessionTTL    time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"24h"`
	WorkerIdle    time.Duration `yaml:"worker_idle" env:"WORKER_IDLE" env-default:"1m"`
	SendTimeout   time.Duration `yaml:"send_timeout" env:"SEND_TIMEOUT" env-default:"30s"`
	StringsPath   string        `yaml:"strings_path" env:"STRINGS_PATH"`

	Proxy ProxyConfig `yaml:"proxy"`
	Store StoreConfig `yaml:"store"`
}

type ProxyConfig struct {
	Server   string `yaml:"server" env:"PROXY_SERVER"`
	Port     int32  `yaml:"port" env:"PROXY_PORT"`
	Username string `yaml:"username" env:"PROXY_USERNAME"`
	Password string `yaml:"password" env:"PROXY_PASSWORD"`
}

func (p ProxyConfig) Enabled() bool {
	return p.Server != "" && p.Port != 0
}

type StoreConfig struct {
	Driver     string `yaml:"driver" env:"STORE_DRIVER" env-default:"redis"`
	RedisURL   string `yaml:"redis_url" env:"REDIS_URL" env-default:"redis://localhost:6379/0"`
	KeyPrefix  string `yaml:"key_prefix" env:"REDIS_KEY_PREFIX" env-default:"relay"`
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"./data/relay.db"`
}

// Load читает настройки: .env (если есть), yaml-файл и переменные окружения.
// Переменные окружения перекрывают значения из файла.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	path := fetchConfigPath()
	if path == "" {
		var cfg AppConfig
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("ошибка загрузки конфига: %w", err)
		}
		return &cfg, cfg.Validate()
	}

	cfg, err := LoadPath(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфига: %w", err)
	}
	return cfg, nil
}

func LoadPath(path string) (*AppConfig, error) {
	var cfg AppConfig
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	var errs []error
	if c.ApiID == 0 || c.ApiHash == "" {
		errs = append(errs, errors.New("TELEGRAM_API_ID, TELEGRAM_API_HASH должны быть заданы"))
	}
	if c.BotToken == "" {
		errs = append(errs, errors.New("TOKEN должен быть задан"))
	}
	if c.AdminID == 0 {
		errs = append(errs, errors.New("ADMINS должен быть задан"))
	}
	if c.BaseDir == "" {
		errs = append(errs, errors.New("base_dir должен быть задан"))
	}
	switch c.Store.Driver {
	case StoreRedis, StoreSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	return errors.Join(errs...)
}

// fetchConfigPath fetches config path from command line flag or environment variable.
// Priority: flag > env > default.
// Default value is empty string.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}
