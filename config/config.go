package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type LanguageConfig struct {
	Name     string `mapstructure:"name"`
	Fallback string `mapstructure:"fallback"`
}

type Config struct {
	Mode   string `mapstructure:"mode"`
	Dotenv string `mapstructure:"dotenv"`
	Server struct {
		HTTPPort       string        `mapstructure:"HTTPPort"`
		Timeout        time.Duration `mapstructure:"HTTPTimeout"`
		AllowedOrigins []string      `mapstructure:"allowedOrigins"`
	} `mapstructure:"server"`
	Assistant struct {
		Persona       string                    `mapstructure:"persona"`
		MaxTranscript int                       `mapstructure:"maxTranscript"`
		MaxTokens     int32                     `mapstructure:"maxTokens"`
		Temperature   float32                   `mapstructure:"temperature"`
		DefaultRadius float64                   `mapstructure:"defaultRadius"`
		MaxResults    int                       `mapstructure:"maxResults"`
		SessionTTL    time.Duration             `mapstructure:"sessionTTL"`
		Languages     map[string]LanguageConfig `mapstructure:"languages"`
		Instruction   string                    `mapstructure:"instructionTemplate"`
		UnknownName   string                    `mapstructure:"unknownLanguageName"`
		DefaultLang   string                    `mapstructure:"defaultLanguage"`
	} `mapstructure:"assistant"`
	Overpass struct {
		Endpoint       string        `mapstructure:"endpoint"`
		Timeout        time.Duration `mapstructure:"timeout"`
		MaxAttempts    int           `mapstructure:"maxAttempts"`
		InitialBackoff time.Duration `mapstructure:"initialBackoff"`
		CacheTTL       time.Duration `mapstructure:"cacheTTL"`
	} `mapstructure:"overpass"`
	Geolocation struct {
		Endpoint   string        `mapstructure:"endpoint"`
		Timeout    time.Duration `mapstructure:"timeout"`
		MaximumAge time.Duration `mapstructure:"maximumAge"`
	} `mapstructure:"geolocation"`
	Gemini struct {
		Model     string `mapstructure:"model"`
		APIKeyEnv string `mapstructure:"apiKeyEnv"`
	} `mapstructure:"gemini"`
	Repositories struct {
		Postgres struct {
			Enabled           bool   `mapstructure:"enabled"`
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Environment overrides, e.g. OVERPASS_ENDPOINT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Zero is a valid temperature, so it is only defaulted when unset.
	v.SetDefault("assistant.temperature", 0.7)

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&config)
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

// applyDefaults fills values the assistant cannot run without.
func applyDefaults(c *Config) {
	if c.Assistant.MaxTranscript <= 1 {
		c.Assistant.MaxTranscript = 20
	}
	if c.Assistant.MaxTokens <= 0 {
		c.Assistant.MaxTokens = 1000
	}
	if c.Assistant.DefaultRadius <= 0 {
		c.Assistant.DefaultRadius = 5000
	}
	if c.Assistant.MaxResults <= 0 {
		c.Assistant.MaxResults = 10
	}
	if c.Assistant.SessionTTL <= 0 {
		c.Assistant.SessionTTL = 30 * time.Minute
	}
	if c.Assistant.DefaultLang == "" {
		c.Assistant.DefaultLang = "en"
	}
	if c.Assistant.Instruction == "" {
		c.Assistant.Instruction = "Please respond in %s."
	}
	if c.Assistant.UnknownName == "" {
		c.Assistant.UnknownName = "the requested language"
	}
	if c.Overpass.MaxAttempts <= 0 {
		c.Overpass.MaxAttempts = 3
	}
	if c.Overpass.InitialBackoff <= 0 {
		c.Overpass.InitialBackoff = 500 * time.Millisecond
	}
	if c.Geolocation.Timeout <= 0 {
		c.Geolocation.Timeout = 10 * time.Second
	}
	if c.Geolocation.MaximumAge <= 0 {
		c.Geolocation.MaximumAge = 5 * time.Minute
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Gemini.APIKeyEnv == "" {
		c.Gemini.APIKeyEnv = "GOOGLE_GEMINI_API_KEY"
	}
}
