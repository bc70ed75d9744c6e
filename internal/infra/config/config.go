package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"tg-gate-bot/internal/domain"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"8080"`

	Telegram struct {
		Token      string `envconfig:"TG_BOT_TOKEN" required:"true"`
		WebhookURL string `envconfig:"TG_WEBHOOK_URL"`
		Secret     string `envconfig:"TG_WEBHOOK_SECRET"`
	} `envconfig:""`

	Admins struct {
		SuperAdminID int64 `envconfig:"SUPER_ADMIN_ID" required:"true"`
		Admin2ID     int64 `envconfig:"ADMIN2_ID" default:"0"`
	} `envconfig:""`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr  string        `envconfig:"REDIS_ADDR"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"168h"`

	Events struct {
		RabbitURL string `envconfig:"RABBITMQ_URL"`
		Queue     string `envconfig:"LEDGER_EVENTS_QUEUE" default:"ledger_events"`
	} `envconfig:""`

	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	Birthday struct {
		Interval       time.Duration `envconfig:"BIRTHDAY_INTERVAL" default:"1h"`
		UTCOffsetHours int           `envconfig:"BIRTHDAY_UTC_OFFSET_HOURS" default:"5"`
		InProcess      bool          `envconfig:"BIRTHDAY_IN_PROCESS" default:"true"`
	} `envconfig:""`

	UpdateWorkers int `envconfig:"UPDATE_WORKERS" default:"8"`
}

// ProtectedAdmins возвращает администраторов из конфигурации.
func (c AppConfig) ProtectedAdmins() domain.ProtectedAdmins {
	return domain.ProtectedAdmins{c.Admins.SuperAdminID, c.Admins.Admin2ID}
}

// BirthdayOffset возвращает смещение часового пояса для поздравлений.
func (c AppConfig) BirthdayOffset() time.Duration {
	return time.Duration(c.Birthday.UTCOffsetHours) * time.Hour
}

// Load загружает .env (если есть) и конфиг из окружения.
func Load() AppConfig {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// Parse читает конфиг и возвращает ошибку вместо завершения процесса.
func Parse() (AppConfig, error) {
	_ = godotenv.Load()
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
