package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/helmcode/leafdoc/pkg/knowledge"
	"github.com/helmcode/leafdoc/pkg/llm"
)

// DefaultPath is read when no --config flag is given and the file exists.
const DefaultPath = "leafdoc.yaml"

// Config holds all leafdoc configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Diagnosis DiagnosisConfig `yaml:"diagnosis"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	StaticDir   string `yaml:"static_dir"`
	BodyLimitMB int    `yaml:"body_limit_mb"`
}

// LLMConfig selects the vision provider. An empty APIKey is filled from the
// provider's environment variable.
type LLMConfig struct {
	Provider string        `yaml:"provider"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

type DiagnosisConfig struct {
	FallbackClass string `yaml:"fallback_class"`
	MaxImageDim   uint   `yaml:"max_image_dim"`
}

// StorageConfig locates the prediction history. An empty Path disables it.
type StorageConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			BodyLimitMB: 10,
		},
		LLM: LLMConfig{
			Provider: string(llm.ProviderGemini),
			Timeout:  60 * time.Second,
		},
		Diagnosis: DiagnosisConfig{
			FallbackClass: string(knowledge.DefaultFallback),
			MaxImageDim:   1024,
		},
		Storage: StorageConfig{
			Path: "leafdoc.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file in the working directory and the process environment,
// in increasing priority.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}

	provider, err := llm.ParseProvider(c.LLM.Provider)
	if err != nil {
		return err
	}
	c.LLM.Provider = string(provider)

	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv(llm.APIKeyEnv(provider))
	}
	if v := os.Getenv(llm.ModelEnv(provider)); v != "" {
		c.LLM.Model = v
	}

	if v := os.Getenv("LEAFDOC_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LEAFDOC_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LEAFDOC_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("LEAFDOC_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LEAFDOC_FALLBACK_CLASS"); v != "" {
		c.Diagnosis.FallbackClass = v
	}
	return nil
}

// Validate checks values that would otherwise fail at request time.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.BodyLimitMB <= 0 {
		return fmt.Errorf("body_limit_mb must be positive")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm timeout must be positive")
	}
	if err := knowledge.Default.ValidateFallback(knowledge.PlantClass(c.Diagnosis.FallbackClass)); err != nil {
		return err
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Settings returns the provider settings for the llm factory.
func (c *Config) Settings() llm.Settings {
	return llm.Settings{
		APIKey:  c.LLM.APIKey,
		Model:   c.LLM.Model,
		BaseURL: c.LLM.BaseURL,
	}
}
