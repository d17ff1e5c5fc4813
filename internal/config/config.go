package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the server settings. Every key can be set from the
// environment using its upper-case name, e.g. CHAT_RATE_LIMIT.
type Config struct {
	Addr            string        `mapstructure:"addr"`
	TLSCert         string        `mapstructure:"tls_cert"`
	TLSKey          string        `mapstructure:"tls_key"`
	LogLevel        string        `mapstructure:"log_level"`
	StaticDir       string        `mapstructure:"static_dir"`
	AllowedOrigins  string        `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	ChatBackend     string        `mapstructure:"chat_backend"`
	OpenRouterKey   string        `mapstructure:"openrouter_api_key"`
	OpenRouterModel string        `mapstructure:"openrouter_model"`
	OpenRouterURL   string        `mapstructure:"openrouter_url"`
	AppURL          string        `mapstructure:"app_url"`
	OllamaURL       string        `mapstructure:"ollama_url"`
	OllamaModel     string        `mapstructure:"ollama_model"`
	LLMTimeout      time.Duration `mapstructure:"llm_timeout"`

	ChatRateLimit  int           `mapstructure:"chat_rate_limit"`
	ChatRateWindow time.Duration `mapstructure:"chat_rate_window"`
	RedisURL       string        `mapstructure:"redis_url"`
}

var defaults = map[string]any{
	"addr":               ":8080",
	"tls_cert":           "",
	"tls_key":            "",
	"log_level":          "info",
	"static_dir":         "./static",
	"allowed_origins":    "*",
	"shutdown_timeout":   "5s",
	"chat_backend":       "openrouter",
	"openrouter_api_key": "",
	"openrouter_model":   "",
	"openrouter_url":     "",
	"app_url":            "http://localhost:3000",
	"ollama_url":         "",
	"ollama_model":       "",
	"llm_timeout":        "60s",
	"chat_rate_limit":    20,
	"chat_rate_window":   "1m",
	"redis_url":          "",
}

// Load reads .env (when present), the environment and an optional config
// file. With an empty path, civiai.yaml in the working directory is used
// if it exists.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("civiai")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return errors.New("tls_cert and tls_key must be set together")
	}
	if c.ChatRateLimit <= 0 || c.ChatRateWindow <= 0 {
		return fmt.Errorf("invalid chat rate limit %d per %s", c.ChatRateLimit, c.ChatRateWindow)
	}
	return nil
}

// TLS reports whether the server should serve HTTPS.
func (c *Config) TLS() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

// Origins splits the comma separated ALLOWED_ORIGINS value.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
