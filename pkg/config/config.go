package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/helmcode/nifty-ai/pkg/llm"
)

// Config is the application configuration. Values are resolved from
// defaults, then the YAML file, then the environment.
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type LLMConfig struct {
	Provider string `yaml:"provider" validate:"required"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model" validate:"required"`
	// Timeout bounds a single fetch. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	File  string `yaml:"file"`
}

// RateLimitConfig paces fetches made by the HTTP server. RPM 0 disables it.
type RateLimitConfig struct {
	RPM   int `yaml:"rpm" validate:"gte=0"`
	Burst int `yaml:"burst" validate:"required_with=RPM,gte=0"`
}

// Error reports a configuration problem found at startup.
type Error struct {
	Field string
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Msg)
}

// Environment variables read by Load.
const (
	EnvAPIKey       = "GEMINI_API_KEY"
	EnvLegacyAPIKey = "API_KEY"
	EnvModel        = "GEMINI_MODEL"
	EnvLogLevel     = "NIFTY_AI_LOG_LEVEL"
)

func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-pro",
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info"},
		RateLimit: RateLimitConfig{
			RPM:   6,
			Burst: 1,
		},
	}
}

// Load reads the YAML file at path, if any, and applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.LLM.APIKey = v
	} else if v := os.Getenv(EnvLegacyAPIKey); v != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
}

// RequireAPIKey fails when no backend credential is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return &Error{Field: "llm.api_key", Msg: EnvAPIKey + " environment variable not set"}
	}
	return nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return err
	}
	if !slices.Contains(llm.NewFactory().GetAvailableProviders(), llm.Provider(strings.ToLower(c.LLM.Provider))) {
		return &Error{Field: "llm.provider", Msg: fmt.Sprintf("unsupported provider %q", c.LLM.Provider)}
	}
	return nil
}

// newValidator reports fields by their YAML names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func fieldError(fe validator.FieldError) *Error {
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "must be set"
	case "gte":
		msg = "must not be negative"
	case "required_with":
		msg = "must be at least 1 when rpm is set"
	case "oneof":
		msg = "must be one of: " + fe.Param()
	default:
		msg = fmt.Sprintf("failed %q validation", fe.Tag())
	}
	return &Error{Field: field, Msg: msg}
}

// LLMOptions returns the settings in the shape llm.Factory expects.
func (c *Config) LLMOptions() map[string]string {
	return map[string]string{
		"api_key": c.LLM.APIKey,
		"model":   c.LLM.Model,
	}
}
