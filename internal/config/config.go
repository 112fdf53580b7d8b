// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Environment keys
const (
	KeyTelegramToken     = "TELEGRAM_BOT_TOKEN"
	KeyDBDriver          = "DB_DRIVER"
	KeyDBDSN             = "DB_DSN"
	KeyAdminUserIDs      = "ADMIN_USER_IDS"
	KeyOpenAIAPIKey      = "OPENAI_API_KEY"
	KeyOpenAIModel       = "OPENAI_MODEL"
	KeyOpenAIBaseURL     = "OPENAI_BASE_URL"
	KeyEnableScheduler   = "ENABLE_SCHEDULER"
	KeyNotifyStartHour   = "NOTIFICATION_START_HOUR"
	KeyNotifyEndHour     = "NOTIFICATION_END_HOUR"
	KeyQuizQuestionCount = "QUIZ_QUESTION_COUNT"
	KeySendRate          = "SEND_RATE_PER_SECOND"
	KeyLogLevel          = "LOG_LEVEL"
)

// Config holds every setting the bot reads at startup
type Config struct {
	TelegramToken string
	DBDriver      string
	DBDSN         string
	AdminUserIDs  map[int64]bool

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	EnableScheduler       bool
	NotificationStartHour int
	NotificationEndHour   int

	QuizQuestionCount int
	SendRatePerSecond float64
	LogLevel          string
}

// LoadDotEnv loads .env files into the process environment. A missing file is not an error.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("failed to load env file", "path", p, "error", err)
		}
	}
}

// NewViper returns a viper instance reading the environment with the defaults applied
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDBDriver, "sqlite3")
	v.SetDefault(KeyDBDSN, "data/linguabot.db")
	v.SetDefault(KeyOpenAIModel, "gpt-4o-mini")
	v.SetDefault(KeyEnableScheduler, true)
	v.SetDefault(KeyNotifyStartHour, 4)
	v.SetDefault(KeyNotifyEndHour, 18)
	v.SetDefault(KeyQuizQuestionCount, 5)
	v.SetDefault(KeySendRate, 25.0)
	v.SetDefault(KeyLogLevel, "info")
	v.AutomaticEnv()
	return v
}

// Load reads the configuration from v
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		TelegramToken:         strings.TrimSpace(v.GetString(KeyTelegramToken)),
		DBDriver:              v.GetString(KeyDBDriver),
		DBDSN:                 strings.TrimSpace(v.GetString(KeyDBDSN)),
		OpenAIAPIKey:          v.GetString(KeyOpenAIAPIKey),
		OpenAIModel:           v.GetString(KeyOpenAIModel),
		OpenAIBaseURL:         v.GetString(KeyOpenAIBaseURL),
		EnableScheduler:       v.GetBool(KeyEnableScheduler),
		NotificationStartHour: v.GetInt(KeyNotifyStartHour),
		NotificationEndHour:   v.GetInt(KeyNotifyEndHour),
		QuizQuestionCount:     v.GetInt(KeyQuizQuestionCount),
		SendRatePerSecond:     v.GetFloat64(KeySendRate),
		LogLevel:              v.GetString(KeyLogLevel),
	}

	admins, err := ParseAdminIDs(v.GetString(KeyAdminUserIDs))
	if err != nil {
		return nil, err
	}
	cfg.AdminUserIDs = admins

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite3", "postgres":
	default:
		return errors.Errorf("%s must be sqlite3 or postgres, got %q", KeyDBDriver, c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.Errorf("%s is empty", KeyDBDSN)
	}
	if c.NotificationStartHour < 0 || c.NotificationStartHour > 23 ||
		c.NotificationEndHour < 0 || c.NotificationEndHour > 23 {
		return errors.New("notification hours must be between 0 and 23")
	}
	if c.QuizQuestionCount <= 0 {
		return errors.Errorf("%s must be positive", KeyQuizQuestionCount)
	}
	if c.SendRatePerSecond <= 0 {
		return errors.Errorf("%s must be positive", KeySendRate)
	}
	return nil
}

// RequireToken fails when no Telegram token is configured
func (c *Config) RequireToken() error {
	if c.TelegramToken == "" {
		return errors.Errorf("%s environment variable is not set", KeyTelegramToken)
	}
	return nil
}

// AIEnabled reports whether an OpenAI key is configured
func (c *Config) AIEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// IsAdmin reports whether userID may run admin commands
func (c *Config) IsAdmin(userID int64) bool {
	return c.AdminUserIDs[userID]
}

// ParseAdminIDs parses a comma separated list of Telegram user IDs
func ParseAdminIDs(raw string) (map[int64]bool, error) {
	ids := make(map[int64]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid admin user ID %q", part)
		}
		ids[id] = true
	}
	return ids, nil
}
