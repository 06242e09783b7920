package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/streed/mod-notes/internal/config"
	interrors "github.com/streed/mod-notes/internal/errors"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize mod-notes configuration",
	Long: `Initialize mod-notes configuration interactively or with flags.
This command writes the configuration file and creates the data directory.`,
	RunE: runInit,
}

var (
	initDataDir           string
	initEmbeddingProvider string
	initOllamaEndpoint    string
	initInteractive       bool
	initForce             bool
)

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initDataDir, "data-dir", "", "Data directory for storing the notes database")
	initCmd.Flags().StringVar(&initEmbeddingProvider, "embedding-provider", "", "Embedding provider: random, hash, ollama or openai")
	initCmd.Flags().StringVar(&initOllamaEndpoint, "ollama-endpoint", "", "Ollama API endpoint (e.g., http://localhost:11434)")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Run interactive setup")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration without asking")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)

	if _, err := os.Stat(configPath); err == nil && !initForce {
		fmt.Printf("Configuration already exists at: %s\n", configPath)
		if !confirm(reader, "Do you want to overwrite it? (y/N): ") {
			fmt.Println("Configuration initialization cancelled.")
			return nil
		}
	}

	if initInteractive {
		fmt.Println("=== mod-notes Configuration Setup ===")
		fmt.Println()

		defaultDataDir := config.GetDefaultDataDirectory()
		if input := prompt(reader, fmt.Sprintf("Data directory [%s]: ", defaultDataDir)); input != "" {
			initDataDir = expandPath(input)
		} else {
			initDataDir = defaultDataDir
		}

		initEmbeddingProvider = prompt(reader, "Embedding provider (random/hash/ollama/openai) [random]: ")

		if initEmbeddingProvider == "ollama" {
			if input := prompt(reader, "Ollama API endpoint [http://localhost:11434]: "); input != "" {
				initOllamaEndpoint = input
			}
		}
	}

	if initDataDir != "" {
		initDataDir = expandPath(initDataDir)
	}
	if initEmbeddingProvider != "" && !validProvider(initEmbeddingProvider) {
		return fmt.Errorf("%w: %s", interrors.ErrUnknownEmbedProvider, initEmbeddingProvider)
	}

	cfg, err := config.InitializeConfig(initDataDir, initEmbeddingProvider, initOllamaEndpoint)
	if err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	fmt.Println("\n=== Configuration Summary ===")
	fmt.Printf("Config file:         %s\n", configPath)
	fmt.Printf("Data directory:      %s\n", cfg.DataDirectory)
	fmt.Printf("Database path:       %s\n", cfg.GetDatabasePath())
	fmt.Printf("Embedding provider:  %s\n", cfg.EmbeddingProvider)
	fmt.Printf("Embedding model:     %s\n", cfg.EmbeddingModel)
	fmt.Printf("Vector dimensions:   %d\n", cfg.VectorDimensions)
	fmt.Printf("Server:              %s\n", cfg.GetServerAddr())

	color.New(color.FgGreen, color.Bold).Println("\nConfiguration initialized successfully!")
	fmt.Println("You can now use 'mod-notes' commands to manage your notes.")

	if cfg.EmbeddingProvider == "ollama" {
		fmt.Println("\nMake sure Ollama is running and has the embedding model installed:")
		fmt.Printf("  ollama pull %s\n", cfg.EmbeddingModel)
	}

	return nil
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func confirm(reader *bufio.Reader, label string) bool {
	response := strings.ToLower(prompt(reader, label))
	return response == "y" || response == "yes"
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[2:])
		}
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}
