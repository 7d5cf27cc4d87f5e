package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime settings loaded from worklens.yaml and WORKLENS_*
// environment variables. Environment takes precedence over the file.
type Config struct {
	ProjectKey  string          `mapstructure:"project_key"`
	ProjectName string          `mapstructure:"project_name"`
	Tools       []string        `mapstructure:"tools"`
	StateDir    string          `mapstructure:"state_dir"`
	LLM         LLMConfig       `mapstructure:"llm"`
	Aggregation AggregateConfig `mapstructure:"aggregation"`
	Debug       bool            `mapstructure:"debug"`
}

type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
}

type AggregateConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// Enabled reports whether the LLM client can be constructed.
func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("project_key", "AG")
	v.SetDefault("project_name", "Default Project")
	v.SetDefault("tools", []string{"jira", "github", "azure_devops"})
	v.SetDefault("state_dir", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_tokens", 500)
	v.SetDefault("aggregation.default_limit", 50)
	v.SetDefault("aggregation.max_limit", 200)
	v.SetDefault("debug", false)
}

// Load reads configuration from the given file path. An empty path falls back
// to worklens.yaml in the working directory; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("worklens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("WORKLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Aggregation.DefaultLimit <= 0 {
		return fmt.Errorf("aggregation.default_limit must be positive, got %d", c.Aggregation.DefaultLimit)
	}
	if c.Aggregation.MaxLimit < c.Aggregation.DefaultLimit {
		return fmt.Errorf("aggregation.max_limit %d is below default_limit %d", c.Aggregation.MaxLimit, c.Aggregation.DefaultLimit)
	}
	if len(c.Tools) == 0 {
		return fmt.Errorf("at least one tool must be configured")
	}
	return nil
}
