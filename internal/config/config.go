// Package config loads readcheck settings from defaults, an optional config
// file, a .env file and READCHECK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/readcheck/internal/llm"
	"github.com/abhisek/readcheck/internal/logger"
	"github.com/abhisek/readcheck/internal/scoring"
	"github.com/abhisek/readcheck/internal/store"
)

// EnvPrefix is prepended to every environment variable.
const EnvPrefix = "READCHECK"

type Config struct {
	DB      DBConfig      `mapstructure:"db"`
	LLM     llm.Config    `mapstructure:"llm"`
	Grading GradingConfig `mapstructure:"grading"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     logger.Config `mapstructure:"log"`
}

type DBConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type GradingConfig struct {
	// OpenConcurrency is how many open answers are judged at once (1..3).
	OpenConcurrency int `mapstructure:"open_concurrency"`
}

type ServerConfig struct {
	Addr        string        `mapstructure:"addr"`
	JWTSecret   string        `mapstructure:"jwt_secret"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	CORSOrigins []string      `mapstructure:"cors_origins"`
}

// StoreOptions converts the DB section for store.Open.
func (c DBConfig) StoreOptions() store.Options {
	return store.Options{Driver: c.Driver, DSN: c.DSN}
}

// Load reads the configuration. file may be empty. dotenv names .env files
// to load first; missing files are ignored.
func Load(file string, dotenv ...string) (*Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	// godotenv never overrides variables that are already set.
	_ = godotenv.Load(dotenv...)

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// No default, so an unset provider can be told apart from an explicit one.
	if err := v.BindEnv("llm.provider"); err != nil {
		return nil, err
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Without an explicit provider, pick the first one whose standard key
	// variable is set.
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = llm.DefaultConfig().Provider
		if found, ok := llm.DiscoverConfig(cfg.LLM); ok {
			cfg.LLM = found
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Grading.OpenConcurrency < 1 || c.Grading.OpenConcurrency > scoring.MaxOpenConcurrency {
		errs = append(errs, fmt.Errorf("grading.open_concurrency must be between 1 and %d, got %d",
			scoring.MaxOpenConcurrency, c.Grading.OpenConcurrency))
	}
	switch strings.ToLower(c.DB.Driver) {
	case store.DriverSQLite, store.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("db.driver must be %q or %q, got %q",
			store.DriverSQLite, store.DriverPostgres, c.DB.Driver))
	}
	if c.LLM.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("llm.retry.max_attempts must be at least 1"))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	d := llm.DefaultConfig()

	v.SetDefault("db.driver", store.DriverSQLite)
	v.SetDefault("db.dsn", "")

	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", d.Gemini.Model)
	v.SetDefault("llm.gemini.base_url", "")
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", d.Anthropic.Model)
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", d.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", d.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.Retry.Multiplier)
	v.SetDefault("llm.retry.jitter", d.Retry.Jitter)
	v.SetDefault("llm.timeout", d.Timeout)
	v.SetDefault("llm.requests_per_second", 0.0)

	v.SetDefault("grading.open_concurrency", 1)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.token_ttl", 8*time.Hour)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}
