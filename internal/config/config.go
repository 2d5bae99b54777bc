package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all process configuration, populated from the environment.
type Config struct {
	Port     string `env:"HUNTERHALL_PORT" envDefault:"8080"`
	DBPath   string `env:"HUNTERHALL_DB_PATH" envDefault:"hunterhall.db"`
	LogLevel string `env:"HUNTERHALL_LOG_LEVEL" envDefault:"info"`
	LogFmt   string `env:"HUNTERHALL_LOG_FORMAT" envDefault:"text"`

	// JWTSecret signs the bearer tokens the bot gateway presents.
	JWTSecret string `env:"HUNTERHALL_JWT_SECRET,required"`

	// JudgmentHour/JudgmentMinute form the daily cutoff after which the
	// judgment cycle may run (23:50 by default, matching the quest day).
	JudgmentHour   int `env:"HUNTERHALL_JUDGMENT_HOUR" envDefault:"23"`
	JudgmentMinute int `env:"HUNTERHALL_JUDGMENT_MINUTE" envDefault:"50"`
	LaunchHour     int `env:"HUNTERHALL_LAUNCH_HOUR" envDefault:"5"`

	VAPIDPublicKey  string `env:"HUNTERHALL_VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"HUNTERHALL_VAPID_PRIVATE_KEY"`
	PushSubscriber  string `env:"HUNTERHALL_PUSH_SUBSCRIBER" envDefault:"mailto:admin@hunterhall.app"`

	BackupEnabled    bool   `env:"HUNTERHALL_BACKUP_ENABLED" envDefault:"false"`
	BackupPassphrase string `env:"HUNTERHALL_BACKUP_PASSPHRASE"`
	BackupBucket     string `env:"HUNTERHALL_BACKUP_BUCKET"`
	BackupRegion     string `env:"HUNTERHALL_BACKUP_REGION" envDefault:"auto"`
	BackupEndpoint   string `env:"HUNTERHALL_BACKUP_ENDPOINT"`
	BackupAccessKey  string `env:"HUNTERHALL_BACKUP_ACCESS_KEY"`
	BackupSecretKey  string `env:"HUNTERHALL_BACKUP_SECRET_KEY"`
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
