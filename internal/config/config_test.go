package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaultDataDirectory(t *testing.T) {
	tests := []struct {
		name     string
		xdgHome  string
		expected string
	}{
		{
			name:     "With XDG_DATA_HOME set",
			xdgHome:  "/custom/data",
			expected: "/custom/data/mod-notes",
		},
		{
			name:    "Without XDG_DATA_HOME",
			xdgHome: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_DATA_HOME", tt.xdgHome)
			result := GetDefaultDataDirectory()

			if tt.xdgHome == "" {
				homeDir, _ := os.UserHomeDir()
				expected := filepath.Join(homeDir, ".local", "share", "mod-notes")
				if result != expected {
					t.Errorf("Expected %s, got %s", expected, result)
				}
			} else if result != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)
	configFile := filepath.Join(tempDir, "mod-notes", "config.json")

	dataDir := filepath.Join(tempDir, "test-data")

	testConfig := &Config{
		DataDirectory:     dataDir,
		DatabasePath:      filepath.Join(dataDir, "notes.db"),
		EmbeddingProvider: "ollama",
		EmbeddingModel:    "test-model",
		VectorDimensions:  768,
		EmbedConcurrency:  4,
		OllamaEndpoint:    "http://test:11434",
		ServerHost:        "0.0.0.0",
		ServerPort:        9000,
		Debug:             true,
	}

	if err := Save(testConfig); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	info, err := os.Stat(configFile)
	if os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected config permissions 0600, got %v", info.Mode().Perm())
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if *loaded != *testConfig {
		t.Errorf("Loaded config mismatch:\nexpected %+v\ngot      %+v", *testConfig, *loaded)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(tempDir, "data"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.EmbeddingProvider != "random" {
		t.Errorf("Expected default provider random, got %s", cfg.EmbeddingProvider)
	}
	if cfg.VectorDimensions != 128 {
		t.Errorf("Expected default dimensions 128, got %d", cfg.VectorDimensions)
	}
	expectedDB := filepath.Join(tempDir, "data", "mod-notes", "notes.db")
	if cfg.DatabasePath != expectedDB {
		t.Errorf("Expected database path %s, got %s", expectedDB, cfg.DatabasePath)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	configDir := filepath.Join(tempDir, "mod-notes")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}

	partialConfig := map[string]interface{}{
		"embedding_model": "custom-model",
	}
	data, _ := json.MarshalIndent(partialConfig, "", "  ")
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), data, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.EmbeddingModel != "custom-model" {
		t.Errorf("Expected custom EmbeddingModel, got %s", cfg.EmbeddingModel)
	}
	if cfg.OllamaEndpoint != "http://localhost:11434" {
		t.Errorf("Expected default OllamaEndpoint, got '%s'", cfg.OllamaEndpoint)
	}
	if cfg.EmbedConcurrency != 8 {
		t.Errorf("Expected default EmbedConcurrency 8, got %d", cfg.EmbedConcurrency)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)
	t.Setenv("MOD_NOTES_EMBEDDING_PROVIDER", "hash")
	t.Setenv("MOD_NOTES_SERVER_PORT", "4321")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.EmbeddingProvider != "hash" {
		t.Errorf("Expected env provider hash, got %s", cfg.EmbeddingProvider)
	}
	if cfg.ServerPort != 4321 {
		t.Errorf("Expected env port 4321, got %d", cfg.ServerPort)
	}
}

func TestInitializeConfig(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	dataDir := filepath.Join(tempDir, "data")

	cfg, err := InitializeConfig(dataDir, "ollama", "http://custom:11434")
	if err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}

	if cfg.DataDirectory != dataDir {
		t.Errorf("Expected DataDirectory %s, got %s", dataDir, cfg.DataDirectory)
	}
	if cfg.DatabasePath != filepath.Join(dataDir, "notes.db") {
		t.Errorf("Unexpected DatabasePath %s", cfg.DatabasePath)
	}
	if cfg.EmbeddingProvider != "ollama" {
		t.Errorf("Expected provider ollama, got %s", cfg.EmbeddingProvider)
	}
	if cfg.OllamaEndpoint != "http://custom:11434" {
		t.Errorf("Expected OllamaEndpoint http://custom:11434, got %s", cfg.OllamaEndpoint)
	}

	configFile := filepath.Join(tempDir, "mod-notes", "config.json")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		t.Fatal("Config file was not created during initialization")
	}
}

func TestGetDatabasePath(t *testing.T) {
	tests := []struct {
		name         string
		config       Config
		expectedPath string
	}{
		{
			name:         "With DatabasePath set",
			config:       Config{DatabasePath: "/custom/path/notes.db", DataDirectory: "/data"},
			expectedPath: "/custom/path/notes.db",
		},
		{
			name:         "Without DatabasePath set",
			config:       Config{DataDirectory: "/data"},
			expectedPath: "/data/notes.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.config.GetDatabasePath(); result != tt.expectedPath {
				t.Errorf("Expected %s, got %s", tt.expectedPath, result)
			}
		})
	}
}

func TestGetOllamaAPIURL(t *testing.T) {
	tests := []struct {
		base     string
		endpoint string
		expected string
	}{
		{"http://localhost:11434", "embeddings", "http://localhost:11434/api/embeddings"},
		{"http://localhost:11434/", "embeddings", "http://localhost:11434/api/embeddings"},
		{"http://ollama:11434", "tags", "http://ollama:11434/api/tags"},
	}

	for _, tt := range tests {
		cfg := Config{OllamaEndpoint: tt.base}
		if result := cfg.GetOllamaAPIURL(tt.endpoint); result != tt.expected {
			t.Errorf("For %s + %s: expected %s, got %s", tt.base, tt.endpoint, tt.expected, result)
		}
	}
}
