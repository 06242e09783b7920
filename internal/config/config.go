package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/streed/mod-notes/internal/constants"
)

const (
	appName   = "mod-notes"
	envPrefix = "MOD_NOTES"
)

type Config struct {
	DataDirectory string `json:"data_directory" mapstructure:"data_directory"`
	DatabasePath  string `json:"database_path,omitempty" mapstructure:"database_path"`

	// Embedding settings
	EmbeddingProvider string `json:"embedding_provider" mapstructure:"embedding_provider"`
	EmbeddingModel    string `json:"embedding_model" mapstructure:"embedding_model"`
	VectorDimensions  int    `json:"vector_dimensions" mapstructure:"vector_dimensions"`
	EmbedConcurrency  int    `json:"embed_concurrency" mapstructure:"embed_concurrency"`
	OllamaEndpoint    string `json:"ollama_endpoint" mapstructure:"ollama_endpoint"`
	OpenAIAPIKey      string `json:"openai_api_key,omitempty" mapstructure:"openai_api_key"`
	OpenAIBaseURL     string `json:"openai_base_url,omitempty" mapstructure:"openai_base_url"`

	// Server settings
	ServerHost string `json:"server_host" mapstructure:"server_host"`
	ServerPort int    `json:"server_port" mapstructure:"server_port"`

	Debug bool `json:"debug" mapstructure:"debug"`
}

// getDefaultConfig returns a fresh copy of the default configuration
func getDefaultConfig() Config {
	return Config{
		DataDirectory:     "", // Will be set to ~/.local/share/mod-notes
		DatabasePath:      "", // Will be set to DataDirectory/notes.db
		EmbeddingProvider: "random",
		EmbeddingModel:    constants.DefaultOllamaModel,
		VectorDimensions:  constants.DefaultVectorDimensions,
		EmbedConcurrency:  constants.DefaultEmbedConcurrency,
		OllamaEndpoint:    "http://localhost:11434",
		ServerHost:        "localhost",
		ServerPort:        3000,
		Debug:             false,
	}
}

func setDefaults(v *viper.Viper) {
	d := getDefaultConfig()
	v.SetDefault("data_directory", GetDefaultDataDirectory())
	v.SetDefault("database_path", d.DatabasePath)
	v.SetDefault("embedding_provider", d.EmbeddingProvider)
	v.SetDefault("embedding_model", d.EmbeddingModel)
	v.SetDefault("vector_dimensions", d.VectorDimensions)
	v.SetDefault("embed_concurrency", d.EmbedConcurrency)
	v.SetDefault("ollama_endpoint", d.OllamaEndpoint)
	v.SetDefault("openai_api_key", d.OpenAIAPIKey)
	v.SetDefault("openai_base_url", d.OpenAIBaseURL)
	v.SetDefault("server_host", d.ServerHost)
	v.SetDefault("server_port", d.ServerPort)
	v.SetDefault("debug", d.Debug)
}

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, appName, "config.json"), nil
}

func GetDefaultDataDirectory() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", "."+appName)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, appName)
}

// Load reads the config file if present, applies defaults for missing keys and
// lets MOD_NOTES_* environment variables override both.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.DataDirectory == "" {
		cfg.DataDirectory = GetDefaultDataDirectory()
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(cfg.DataDirectory, "notes.db")
	}
	if cfg.VectorDimensions <= 0 {
		cfg.VectorDimensions = constants.DefaultVectorDimensions
	}
	if cfg.EmbedConcurrency <= 0 {
		cfg.EmbedConcurrency = constants.DefaultEmbedConcurrency
	}

	return &cfg, nil
}

func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if cfg.DataDirectory != "" {
		if err := os.MkdirAll(cfg.DataDirectory, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, constants.ConfigFileMode); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// InitializeConfig writes a fresh configuration, overriding the defaults with any
// non-empty argument.
func InitializeConfig(dataDir, embeddingProvider, ollamaEndpoint string) (*Config, error) {
	cfg := getDefaultConfig()

	if dataDir != "" {
		cfg.DataDirectory = dataDir
	} else {
		cfg.DataDirectory = GetDefaultDataDirectory()
	}

	cfg.DatabasePath = filepath.Join(cfg.DataDirectory, "notes.db")

	if embeddingProvider != "" {
		cfg.EmbeddingProvider = embeddingProvider
	}
	if ollamaEndpoint != "" {
		cfg.OllamaEndpoint = ollamaEndpoint
	}

	if err := Save(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) GetDatabasePath() string {
	if c.DatabasePath != "" {
		return c.DatabasePath
	}
	return filepath.Join(c.DataDirectory, "notes.db")
}

func (c *Config) GetOllamaAPIURL(endpoint string) string {
	return fmt.Sprintf("%s/api/%s", strings.TrimRight(c.OllamaEndpoint, "/"), endpoint)
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}
