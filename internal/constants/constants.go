package constants

// Note field bounds
const (
	MaxTitleLength = 200
	MaxBodyLength  = 5000
)

// Paging and search limits
const (
	DefaultPage        = 1
	DefaultListLimit   = 10
	DefaultSearchLimit = 10
	MaxLimit           = 100

	// Text truncation lengths
	PreviewLength       = 100
	SearchPreviewLength = 150
)

// Embedding defaults
const (
	DefaultVectorDimensions = 128
	DefaultEmbedConcurrency = 8
	DefaultOllamaModel      = "nomic-embed-text"
	HashMultiplier          = 31
	HashModulo              = 100
)

// File permissions
const (
	ConfigFileMode = 0600 // Secure file permissions for config
)
