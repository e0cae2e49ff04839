package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	HTTPAddr    string
	BotName     string

	// Profile selects the matching behavior: "enhanced" scans keywords
	// first, "basic" scores word-set similarity.
	Profile        string
	KnowledgePath  string
	MatchThreshold float64

	StrictDetection bool
	AmbientDelaySec int

	SlackBotToken string
	SlackAppToken string
	SlackAPIBase  string

	MemoryBackend    string
	MemoryFilePath   string
	MemorySQLitePath string
	MemoryDatabase   string
	MemoryLimit      int
	RetentionDays    int
	RetentionCron    string

	LLMProvider       string // openai | anthropic
	LLMAPIKey         string
	LLMBaseURL        string
	LLMModel          string
	LLMMaxTokens      int
	LLMTemperature    float64
	LLMTimeoutSec     int
	HistoryCommandLen int
}

// Load reads an optional .env file, then the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		Environment: stringOrDefault("HELPBOT_ENV", "development"),
		HTTPAddr:    stringOrDefault("HELPBOT_HTTP_ADDR", ":8080"),
		BotName:     stringOrDefault("HELPBOT_NAME", "helpbot"),

		Profile:        stringOrDefault("HELPBOT_PROFILE", "enhanced"),
		KnowledgePath:  stringOrDefault("HELPBOT_KNOWLEDGE_PATH", "knowledge_base.json"),
		MatchThreshold: floatOrDefault("HELPBOT_MATCH_THRESHOLD", 0.3),

		StrictDetection: boolOrDefault("HELPBOT_STRICT_DETECTION", false),
		AmbientDelaySec: intOrDefault("HELPBOT_AMBIENT_DELAY_SECONDS", 2),

		SlackBotToken: strings.TrimSpace(os.Getenv("SLACK_BOT_TOKEN")),
		SlackAppToken: strings.TrimSpace(os.Getenv("SLACK_APP_TOKEN")),
		SlackAPIBase:  stringOrDefault("HELPBOT_SLACK_API_BASE", "https://slack.com/api"),

		MemoryBackend:    stringOrDefault("HELPBOT_MEMORY_BACKEND", "file"),
		MemoryFilePath:   stringOrDefault("HELPBOT_MEMORY_FILE", "user_conversations.json"),
		MemorySQLitePath: stringOrDefault("HELPBOT_MEMORY_SQLITE_PATH", "helpbot.db"),
		MemoryDatabase:   strings.TrimSpace(os.Getenv("HELPBOT_MEMORY_DATABASE_URL")),
		MemoryLimit:      intOrDefault("HELPBOT_MEMORY_LIMIT", 10),
		RetentionDays:    intOrDefault("HELPBOT_RETENTION_DAYS", 0),
		RetentionCron:    stringOrDefault("HELPBOT_RETENTION_CRON", "0 3 * * *"),

		LLMProvider:       stringOrDefault("HELPBOT_LLM_PROVIDER", "openai"),
		LLMAPIKey:         strings.TrimSpace(os.Getenv("HELPBOT_LLM_API_KEY")),
		LLMBaseURL:        strings.TrimSpace(os.Getenv("HELPBOT_LLM_BASE_URL")),
		LLMModel:          strings.TrimSpace(os.Getenv("HELPBOT_LLM_MODEL")),
		LLMMaxTokens:      intOrDefault("HELPBOT_LLM_MAX_TOKENS", 150),
		LLMTemperature:    floatOrDefault("HELPBOT_LLM_TEMPERATURE", 0.7),
		LLMTimeoutSec:     intOrDefault("HELPBOT_LLM_TIMEOUT_SECONDS", 10),
		HistoryCommandLen: intOrDefault("HELPBOT_HISTORY_COMMAND_LENGTH", 5),
	}
}

func (c Config) AmbientDelay() time.Duration {
	return time.Duration(c.AmbientDelaySec) * time.Second
}

func (c Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSec) * time.Second
}

func (c Config) RetentionMaxAge() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

func stringOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func boolOrDefault(name string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func floatOrDefault(name string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
