package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the mockview API server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Interview InterviewConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port int    `envconfig:"MOCKVIEW_PORT" default:"8080"`
	Env  string `envconfig:"MOCKVIEW_ENV" default:"development"`
}

type DatabaseConfig struct {
	URL             string        `envconfig:"DATABASE_URL"`
	MaxOpenConns    int           `envconfig:"DATABASE_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"5m"`
}

type RedisConfig struct {
	URL             string `envconfig:"REDIS_URL"`
	RateLimitPerMin int    `envconfig:"RATE_LIMIT_PER_MIN" default:"60"`
}

type InterviewConfig struct {
	CacheTTL     time.Duration `envconfig:"INTERVIEW_CACHE_TTL" default:"5m"`
	MaxQuestions int           `envconfig:"INTERVIEW_MAX_QUESTIONS" default:"10"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// SpeechConfig tunes the turn-taking pauses and the voice of the speech engine.
type SpeechConfig struct {
	ListenDelay       time.Duration `envconfig:"SPEECH_LISTEN_DELAY" default:"500ms"`
	NextQuestionDelay time.Duration `envconfig:"SPEECH_NEXT_QUESTION_DELAY" default:"1s"`
	Locale            string        `envconfig:"SPEECH_LOCALE" default:"en-US"`
	Rate              float64       `envconfig:"SPEECH_RATE" default:"0.9"`
	// Voices lists the installed voices, comma separated. The first Google,
	// Natural or Premium voice is preferred.
	Voices []string `envconfig:"SPEECH_VOICES"`
}

type SessionConfig struct {
	RedirectDelay time.Duration `envconfig:"SESSION_REDIRECT_DELAY" default:"2s"`
}

// ClientConfig holds the configuration of the interview CLI.
type ClientConfig struct {
	APIURL  string        `envconfig:"MOCKVIEW_API_URL" default:"http://localhost:8080"`
	APIKey  string        `envconfig:"MOCKVIEW_API_KEY"`
	Timeout time.Duration `envconfig:"MOCKVIEW_API_TIMEOUT" default:"10s"`
	Env     string        `envconfig:"MOCKVIEW_ENV" default:"development"`
	Speech  SpeechConfig
	Session SessionConfig
	Log     LogConfig
}

const maxQuestionsLimit = 10

var validEnvs = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
	"test":        true,
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadClient reads the CLI configuration from environment variables.
// The API key is not required here; the CLI may receive it as a flag.
func LoadClient() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if !validEnvs[c.Server.Env] {
		return fmt.Errorf("MOCKVIEW_ENV must be one of development, staging, production, test; got %q", c.Server.Env)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("MOCKVIEW_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if !strings.HasPrefix(c.Database.URL, "postgres://") && !strings.HasPrefix(c.Database.URL, "postgresql://") {
		return fmt.Errorf("DATABASE_URL must start with postgres:// or postgresql://")
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("DATABASE_MAX_OPEN_CONNS must be at least 1")
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DATABASE_MAX_IDLE_CONNS (%d) must be between 0 and DATABASE_MAX_OPEN_CONNS (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if !strings.HasPrefix(c.Redis.URL, "redis://") && !strings.HasPrefix(c.Redis.URL, "rediss://") {
		return fmt.Errorf("REDIS_URL must start with redis:// or rediss://, got %q", c.Redis.URL)
	}
	if c.Redis.RateLimitPerMin < 1 {
		return fmt.Errorf("RATE_LIMIT_PER_MIN must be at least 1")
	}

	if c.Interview.CacheTTL <= 0 {
		return fmt.Errorf("INTERVIEW_CACHE_TTL must be positive")
	}
	if c.Interview.MaxQuestions < 1 || c.Interview.MaxQuestions > maxQuestionsLimit {
		return fmt.Errorf("INTERVIEW_MAX_QUESTIONS must be between 1 and %d, got %d", maxQuestionsLimit, c.Interview.MaxQuestions)
	}

	return c.Log.validate()
}

func (c *ClientConfig) validate() error {
	if !validEnvs[c.Env] {
		return fmt.Errorf("MOCKVIEW_ENV must be one of development, staging, production, test; got %q", c.Env)
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("MOCKVIEW_API_URL must start with http:// or https://, got %q", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("MOCKVIEW_API_TIMEOUT must be positive")
	}
	if c.Speech.ListenDelay < 0 || c.Speech.NextQuestionDelay < 0 {
		return fmt.Errorf("SPEECH_LISTEN_DELAY and SPEECH_NEXT_QUESTION_DELAY must not be negative")
	}
	if c.Speech.Locale == "" {
		return fmt.Errorf("SPEECH_LOCALE must not be empty")
	}
	if c.Speech.Rate <= 0 || c.Speech.Rate > 10 {
		return fmt.Errorf("SPEECH_RATE must be in (0, 10], got %v", c.Speech.Rate)
	}
	if c.Session.RedirectDelay < 0 {
		return fmt.Errorf("SESSION_REDIRECT_DELAY must not be negative")
	}
	return c.Log.validate()
}

func (l LogConfig) validate() error {
	if !validLevels[l.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", l.Level)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

func (s ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}
