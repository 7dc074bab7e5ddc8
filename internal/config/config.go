package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Matchmaking tunables, overridable through the environment.
const (
	DefaultRatingWindow     = 200
	DefaultBotFallbackDelay = 10 * time.Second
	DefaultGracePeriod      = 5 * time.Second
	DefaultVocabCacheTTL    = 24 * time.Hour
	DefaultVocabWordCount   = 10
)

// Fallback pools used when no pools file is configured. Topics seed
// practice-mode content; bot names are display names only, unrelated to the
// bot-personality profiles used by the content service.
var (
	DefaultTopics = []string{
		"food", "travel", "family", "work", "hobbies",
		"weather", "shopping", "school", "sports", "music",
	}
	DefaultBotNames = []string{
		"Mei", "Hiro", "Sofia", "Luca", "Amara", "Nikolai", "Yuna", "Mateo",
	}
)

type Config struct {
	Port         string
	RedisAddr    string
	JWTSecret    string
	GeminiAPIKey string
	GeminiModel  string

	RatingWindow     int
	BotFallbackDelay time.Duration
	GracePeriod      time.Duration
	VocabCacheTTL    time.Duration
	VocabWordCount   int

	Topics   []string
	BotNames []string
}

// pools is the on-disk shape of the optional DUEL_POOLS_FILE.
type pools struct {
	Topics   []string `yaml:"topics"`
	BotNames []string `yaml:"botNames"`
}

// Load builds the config from environment variables, falling back to the
// defaults above. An unreadable pools file is an error; an absent one is not.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnvOrDefault("PORT", "8080"),
		RedisAddr:    getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		JWTSecret:    getEnvOrDefault("JWT_SECRET", "dev-secret"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),

		RatingWindow:     DefaultRatingWindow,
		BotFallbackDelay: DefaultBotFallbackDelay,
		GracePeriod:      DefaultGracePeriod,
		VocabCacheTTL:    DefaultVocabCacheTTL,
		VocabWordCount:   DefaultVocabWordCount,

		Topics:   DefaultTopics,
		BotNames: DefaultBotNames,
	}

	var err error
	if cfg.RatingWindow, err = getEnvInt("RATING_WINDOW", cfg.RatingWindow); err != nil {
		return nil, err
	}
	if cfg.VocabWordCount, err = getEnvInt("VOCAB_WORD_COUNT", cfg.VocabWordCount); err != nil {
		return nil, err
	}
	if cfg.BotFallbackDelay, err = getEnvDuration("BOT_FALLBACK_DELAY", cfg.BotFallbackDelay); err != nil {
		return nil, err
	}
	if cfg.GracePeriod, err = getEnvDuration("GRACE_PERIOD", cfg.GracePeriod); err != nil {
		return nil, err
	}
	if cfg.VocabCacheTTL, err = getEnvDuration("VOCAB_CACHE_TTL", cfg.VocabCacheTTL); err != nil {
		return nil, err
	}

	if path := os.Getenv("DUEL_POOLS_FILE"); path != "" {
		if err := cfg.loadPools(path); err != nil {
			return nil, err
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadPools(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read pools file: %w", err)
	}
	var p pools
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parse pools file: %w", err)
	}
	if len(p.Topics) > 0 {
		c.Topics = p.Topics
	}
	if len(p.BotNames) > 0 {
		c.BotNames = p.BotNames
	}
	return nil
}

func validate(c *Config) error {
	if c.RatingWindow <= 0 {
		return fmt.Errorf("rating window must be positive, got %d", c.RatingWindow)
	}
	if c.BotFallbackDelay <= 0 || c.GracePeriod <= 0 {
		return fmt.Errorf("matchmaking delays must be positive")
	}
	if len(c.Topics) == 0 || len(c.BotNames) == 0 {
		return fmt.Errorf("topic and bot name pools must not be empty")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
