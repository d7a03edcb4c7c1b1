package differ

import "github.com/aleister1102/sgpatch/internal/config"

// DiffConfig holds configuration for match diffing
type DiffConfig struct {
	EnableSemanticCleanup bool
}

// DefaultDiffConfig returns default configuration
func DefaultDiffConfig() DiffConfig {
	return DiffConfig{
		EnableSemanticCleanup: false,
	}
}

// DiffConfigFrom converts the application's diff section
func DiffConfigFrom(cfg config.DiffConfig) DiffConfig {
	return DiffConfig{
		EnableSemanticCleanup: cfg.SemanticCleanup,
	}
}
