package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/streed/mod-notes/internal/config"
	"github.com/streed/mod-notes/internal/embeddings"
	interrors "github.com/streed/mod-notes/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mod-notes configuration",
	Long:  `View and manage mod-notes configuration settings.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration, including environment overrides.`,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE:  runConfigPath,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value.

Available keys:
  - data-dir: Data directory for storing the notes database
  - embedding-provider: random, hash, ollama or openai
  - embedding-model: Embedding model name
  - vector-dimensions: Number of vector dimensions
  - embed-concurrency: Maximum concurrent embedding calls per vector search
  - ollama-endpoint: Ollama API endpoint
  - openai-api-key: API key for the openai provider
  - openai-base-url: Base URL of an OpenAI-compatible API
  - server-host: Default host for 'serve'
  - server-port: Default port for 'serve'
  - debug: Enable/disable debug logging (true/false)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	apiKey := "(not set)"
	if cfg.OpenAIAPIKey != "" {
		apiKey = "(set)"
	}

	fmt.Println("=== mod-notes Configuration ===")
	fmt.Printf("Config file:           %s\n", configPath)
	fmt.Printf("data-dir:              %s\n", cfg.DataDirectory)
	fmt.Printf("Database path:         %s\n", cfg.GetDatabasePath())
	fmt.Printf("embedding-provider:    %s\n", cfg.EmbeddingProvider)
	fmt.Printf("embedding-model:       %s\n", cfg.EmbeddingModel)
	fmt.Printf("vector-dimensions:     %d\n", cfg.VectorDimensions)
	fmt.Printf("embed-concurrency:     %d\n", cfg.EmbedConcurrency)
	fmt.Printf("ollama-endpoint:       %s\n", cfg.OllamaEndpoint)
	fmt.Printf("openai-api-key:        %s\n", apiKey)
	if cfg.OpenAIBaseURL != "" {
		fmt.Printf("openai-base-url:       %s\n", cfg.OpenAIBaseURL)
	}
	fmt.Printf("server:                %s\n", cfg.GetServerAddr())
	fmt.Printf("debug:                 %v\n", cfg.Debug)

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	fmt.Println(configPath)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := setConfigValue(cfg, key, value); err != nil {
		return err
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf("Configuration updated: %s = %s\n", key, value)
	return nil
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "data-dir":
		cfg.DataDirectory = expandPath(value)
		cfg.DatabasePath = "" // Will be regenerated
	case "embedding-provider":
		if !validProvider(value) {
			return fmt.Errorf("%w: %s", interrors.ErrUnknownEmbedProvider, value)
		}
		cfg.EmbeddingProvider = value
	case "embedding-model":
		cfg.EmbeddingModel = value
	case "vector-dimensions":
		dims, err := strconv.Atoi(value)
		if err != nil || dims <= 0 {
			return fmt.Errorf("%w: %s", interrors.ErrInvalidDimensions, value)
		}
		cfg.VectorDimensions = dims
	case "embed-concurrency":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s", interrors.ErrInvalidNumber, value)
		}
		cfg.EmbedConcurrency = n
	case "ollama-endpoint":
		cfg.OllamaEndpoint = value
	case "openai-api-key":
		cfg.OpenAIAPIKey = value
	case "openai-base-url":
		cfg.OpenAIBaseURL = value
	case "server-host":
		cfg.ServerHost = value
	case "server-port":
		port, err := strconv.Atoi(value)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("%w: %s", interrors.ErrInvalidNumber, value)
		}
		cfg.ServerPort = port
	case "debug":
		debug, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s", interrors.ErrInvalidBoolean, value)
		}
		cfg.Debug = debug
	default:
		return fmt.Errorf("%w: %s", interrors.ErrUnknownConfigKey, key)
	}
	return nil
}

func validProvider(provider string) bool {
	switch provider {
	case embeddings.ProviderRandom, embeddings.ProviderHash, embeddings.ProviderOllama, embeddings.ProviderOpenAI:
		return true
	}
	return false
}
