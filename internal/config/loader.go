package config

import (
	"fmt"
	"os"
	"time"

	"flownarrator/internal/logger"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds the full engine configuration. YAML provides the file
// shape; envconfig overrides individual values from the environment.
type Config struct {
	Log        logger.LogConfig `yaml:"log"`
	Translator TranslatorConfig `yaml:"translator"`
	Session    SessionConfig    `yaml:"session"`
	Commentary CommentaryConfig `yaml:"commentary"`
	Model      ModelConfig      `yaml:"model"`
	Redis      RedisConfig      `yaml:"redis"`
}

// TranslatorConfig controls the translation cache
type TranslatorConfig struct {
	CacheSize    int           `yaml:"cache_size" envconfig:"TRANSLATOR_CACHE_SIZE" default:"512"`
	CacheTTL     time.Duration `yaml:"cache_ttl" envconfig:"TRANSLATOR_CACHE_TTL" default:"5m"`
	MinConfidence float64      `yaml:"min_confidence" envconfig:"TRANSLATOR_MIN_CONFIDENCE" default:"0.7"`
}

// SessionConfig controls conversation session behaviour
type SessionConfig struct {
	HistoryCap      int           `yaml:"history_cap" envconfig:"SESSION_HISTORY_CAP" default:"100"`
	ContextStackCap int           `yaml:"context_stack_cap" envconfig:"SESSION_CONTEXT_STACK_CAP" default:"20"`
	TTL             time.Duration `yaml:"ttl" envconfig:"SESSION_TTL" default:"1h"`
	MaxSuggestions  int           `yaml:"max_suggestions" envconfig:"SESSION_MAX_SUGGESTIONS" default:"3"`
}

// CommentaryConfig controls the execution commentary engine
type CommentaryConfig struct {
	DefaultIntensity string `yaml:"default_intensity" envconfig:"COMMENTARY_INTENSITY" default:"balanced"`
	MaxTips          int    `yaml:"max_tips" envconfig:"COMMENTARY_MAX_TIPS" default:"3"`
}

// ModelConfig configures the optional LLM-backed responder
type ModelConfig struct {
	Provider    string  `yaml:"provider" envconfig:"MODEL_PROVIDER" default:"template"`
	Name        string  `yaml:"name" envconfig:"MODEL_NAME" default:"openai/gpt-4o-mini"`
	APIKey      string  `yaml:"-" envconfig:"OPENROUTER_API_KEY"`
	BaseURL     string  `yaml:"base_url" envconfig:"MODEL_BASE_URL" default:"https://openrouter.ai/api/v1"`
	MaxTokens   int     `yaml:"max_tokens" envconfig:"MODEL_MAX_TOKENS" default:"1024"`
	Temperature float64 `yaml:"temperature" envconfig:"MODEL_TEMPERATURE" default:"0.2"`
}

// RedisConfig configures the optional Redis-backed session store
type RedisConfig struct {
	URL string `yaml:"url" envconfig:"REDIS_URL"`
	TTL int    `yaml:"ttl" envconfig:"REDIS_TTL" default:"3600"` // session TTL in seconds
}

// LoadFile loads configuration from a YAML file.
func LoadFile(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %v", err)
	}

	return config, nil
}

// LoadEnv builds a Config from environment variables plus defaults.
func LoadEnv() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %v", err)
	}
	return &config, nil
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Log: logger.LogConfig{
			Level:      "info",
			Format:     "console",
			Output:     "stdout",
			TimeFormat: "rfc3339",
		},
		Translator: TranslatorConfig{
			CacheSize:     512,
			CacheTTL:      5 * time.Minute,
			MinConfidence: 0.7,
		},
		Session: SessionConfig{
			HistoryCap:      100,
			ContextStackCap: 20,
			TTL:             time.Hour,
			MaxSuggestions:  3,
		},
		Commentary: CommentaryConfig{
			DefaultIntensity: "balanced",
			MaxTips:          3,
		},
		Model: ModelConfig{
			Provider:    "template",
			Name:        "openai/gpt-4o-mini",
			BaseURL:     "https://openrouter.ai/api/v1",
			MaxTokens:   1024,
			Temperature: 0.2,
		},
		Redis: RedisConfig{
			TTL: 3600,
		},
	}
}
