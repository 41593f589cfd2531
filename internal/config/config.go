package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration, read once at startup from
// rfpsimplify.yaml (if present) and RFP_* environment variables.
type Config struct {
	Port        int    `mapstructure:"port"`
	DatabaseURL string `mapstructure:"database_url"`
	AdminSecret string `mapstructure:"admin_secret"`

	OpenAI OpenAIConfig `mapstructure:"openai"`
}

type OpenAIConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	EmbedModel string `mapstructure:"embed_model"`
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 8090)
	v.SetDefault("database_url", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.embed_model", "text-embedding-3-small")

	v.SetEnvPrefix("RFP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Legacy env names kept from earlier deployments.
	v.BindEnv("database_url", "RFP_DATABASE_URL", "DATABASE_URL")
	v.BindEnv("openai.api_key", "RFP_OPENAI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("admin_secret", "RFP_ADMIN_SECRET", "ADMIN_SECRET")

	v.SetConfigName("rfpsimplify")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
