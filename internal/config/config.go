package config

import (
	"os"
	"strconv"
)

// Config holds all environment-driven settings, loaded once at startup
type Config struct {
	Port string
	Env  string

	Database DatabaseConfig
	Redis    RedisConfig

	OpenAIAPIKey    string
	AnthropicAPIKey string
	DefaultProvider string
	DefaultModel    string

	QdrantURL      string
	QdrantPassword string

	Discord  DiscordConfig
	Slack    SlackConfig
	Telegram TelegramConfig
	Teams    TeamsConfig
	WhatsApp WhatsAppConfig
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DiscordConfig holds Discord interaction credentials
type DiscordConfig struct {
	PublicKey     string
	ApplicationID string
	TenantID      string
}

// SlackConfig holds Slack Events API credentials
type SlackConfig struct {
	SigningSecret string
	BotToken      string
	TenantID      string
}

// TelegramConfig holds the Telegram bot webhook secret
type TelegramConfig struct {
	BotToken string
	TenantID string
}

// TeamsConfig holds Bot Framework settings
type TeamsConfig struct {
	AppID    string
	TenantID string
}

// WhatsAppConfig holds Meta Cloud API credentials
type WhatsAppConfig struct {
	VerifyToken   string
	AccessToken   string
	PhoneNumberID string
	TenantID      string
}

// Load reads configuration from the environment
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "omnichat"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "omnichat"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			TimeZone: getEnv("DB_TIMEZONE", "UTC"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		DefaultProvider: getEnv("DEFAULT_PROVIDER", "openai"),
		DefaultModel:    getEnv("DEFAULT_MODEL", "gpt-4-turbo-preview"),
		QdrantURL:       getEnv("QDRANT_URL", "localhost:6334"),
		QdrantPassword:  os.Getenv("QDRANT_PASSWORD"),
		Discord: DiscordConfig{
			PublicKey:     os.Getenv("DISCORD_PUBLIC_KEY"),
			ApplicationID: os.Getenv("DISCORD_APPLICATION_ID"),
			TenantID:      os.Getenv("DISCORD_TENANT_ID"),
		},
		Slack: SlackConfig{
			SigningSecret: os.Getenv("SLACK_SIGNING_SECRET"),
			BotToken:      os.Getenv("SLACK_BOT_TOKEN"),
			TenantID:      os.Getenv("SLACK_TENANT_ID"),
		},
		Telegram: TelegramConfig{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
			TenantID: os.Getenv("TELEGRAM_TENANT_ID"),
		},
		Teams: TeamsConfig{
			AppID:    os.Getenv("TEAMS_APP_ID"),
			TenantID: os.Getenv("TEAMS_TENANT_ID"),
		},
		WhatsApp: WhatsAppConfig{
			VerifyToken:   os.Getenv("WHATSAPP_VERIFY_TOKEN"),
			AccessToken:   os.Getenv("WHATSAPP_ACCESS_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			TenantID:      os.Getenv("WHATSAPP_TENANT_ID"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
