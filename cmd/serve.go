package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/streed/mod-notes/internal/api"
	"github.com/streed/mod-notes/internal/logger"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Start an HTTP API server exposing the notes over REST.

Endpoints:
  GET  /api/v1/notes?page=&limit=          newest-first pages
  POST /api/v1/notes                        create a note
  GET  /api/v1/notes/{id}                   fetch one note
  GET  /api/v1/notes/search?q=              keyword search
  GET  /api/v1/notes/vector-search?q=&limit= vector similarity search
  GET  /api/v1/health                       database health

Examples:
  mod-notes serve                             # Uses server_host/server_port from config
  mod-notes serve --host 0.0.0.0 --port 8080  # Bind all interfaces on 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind the server to (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to bind the server to (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	host, port := appConfig.ServerHost, appConfig.ServerPort
	if serveHost != "" {
		host = serveHost
	}
	if servePort != 0 {
		port = servePort
	}

	logger.Info("Initializing HTTP API server...")
	apiServer := api.NewAPIServer(appConfig, db, svc)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- apiServer.Start(host, port)
	}()

	color.New(color.FgGreen, color.Bold).Printf("\nmod-notes HTTP API\n")
	fmt.Printf("Server URL: http://%s:%d\n", host, port)
	fmt.Printf("Health:     http://%s:%d/api/v1/health\n", host, port)
	fmt.Printf("\nExample API calls:\n")
	fmt.Printf("   curl 'http://%s:%d/api/v1/notes?page=1&limit=10'\n", host, port)
	fmt.Printf("   curl 'http://%s:%d/api/v1/notes/search?q=meeting'\n", host, port)
	fmt.Printf("   curl 'http://%s:%d/api/v1/notes/vector-search?q=meeting&limit=5'\n", host, port)
	fmt.Printf("\nPress Ctrl+C to stop the server\n\n")

	select {
	case sig := <-sigChan:
		logger.Info("Received signal %v, shutting down gracefully...", sig)
		if err := apiServer.Stop(); err != nil {
			logger.Error("Error during server shutdown: %v", err)
			return err
		}
		logger.Info("Server stopped successfully")
		return nil
	case err := <-errChan:
		if err != nil {
			logger.Error("Server error: %v", err)
			return err
		}
		return nil
	}
}
