package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/streed/mod-notes/internal/config"
	"github.com/streed/mod-notes/internal/database"
	"github.com/streed/mod-notes/internal/embeddings"
	"github.com/streed/mod-notes/internal/logger"
	"github.com/streed/mod-notes/internal/models"
	"github.com/streed/mod-notes/internal/services"
)

var (
	db        *database.DB
	noteRepo  *models.NoteRepository
	svc       *services.Services
	appConfig *config.Config
	debugFlag bool
	Version   = "dev" // Version is set from main.go
)

var rootCmd = &cobra.Command{
	Use:     "mod-notes",
	Short:   "A notes service with paginated listing, keyword and vector search",
	Version: Version,
	Long: `mod-notes stores short notes in SQLite and retrieves them three ways:
newest-first pages, keyword search with a substring fallback, and vector
similarity search over embeddings computed at query time.

First time users should run 'mod-notes init' to set up the configuration.`,
}

func Execute() error {
	rootCmd.Version = Version
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initAppConfig)
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
}

func initAppConfig() {
	// init and config manage the configuration file themselves
	if len(os.Args) > 1 && (os.Args[1] == "init" || os.Args[1] == "config") {
		return
	}

	var err error
	appConfig, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		fmt.Fprintf(os.Stderr, "Please run 'mod-notes init' to set up the configuration.\n")
		os.Exit(1)
	}

	if debugFlag || appConfig.Debug {
		logger.SetDebugMode(true)
		logger.Debug("Configuration loaded from: %s", func() string {
			path, _ := config.GetConfigPath()
			return path
		}())
		logger.Debug("Data directory: %s", appConfig.DataDirectory)
		logger.Debug("Embedding provider: %s (%s)", appConfig.EmbeddingProvider, appConfig.EmbeddingModel)
		logger.Debug("Vector dimensions: %d", appConfig.VectorDimensions)
		logger.Debug("Embedding concurrency: %d", appConfig.EmbedConcurrency)
	}

	db, err = database.New(appConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing database: %v\n", err)
		os.Exit(1)
	}
	if !db.TextIndexAvailable() {
		logger.Debug("Full-text index unavailable, keyword search will use substring matching")
	}

	embedder, err := embeddings.New(appConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring embeddings: %v\n", err)
		os.Exit(1)
	}

	noteRepo = models.NewNoteRepository(db.Conn())
	svc = services.NewServices(appConfig, noteRepo, embedder)
}
