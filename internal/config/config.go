package config

import (
	"encoding/json"
	"path/filepath"

	"github.com/aleister1102/sgpatch/internal/common/errorwrapper"
	"github.com/aleister1102/sgpatch/internal/common/filemanager"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	DiffConfig   DiffConfig   `json:"diff_config,omitempty" yaml:"diff_config,omitempty"`
	EngineConfig EngineConfig `json:"engine_config,omitempty" yaml:"engine_config,omitempty"`
	LogConfig    LogConfig    `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	PatchConfig  PatchConfig  `json:"patch_config,omitempty" yaml:"patch_config,omitempty"`
	ServerConfig ServerConfig `json:"server_config,omitempty" yaml:"server_config,omitempty"`
	StoreConfig  StoreConfig  `json:"store_config,omitempty" yaml:"store_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		DiffConfig:   NewDefaultDiffConfig(),
		EngineConfig: NewDefaultEngineConfig(),
		LogConfig:    NewDefaultLogConfig(),
		PatchConfig:  NewDefaultPatchConfig(),
		ServerConfig: NewDefaultServerConfig(),
		StoreConfig:  NewDefaultStoreConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// Values missing from the file keep their defaults. YAML is used when the
// file extension is .yaml or .yml, JSON otherwise.
func LoadGlobalConfig(providedPath string, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		return cfg, nil
	}

	fileManager := filemanager.NewFileManager(logger)
	if !fileManager.FileExists(filePath) {
		return nil, errorwrapper.NewValidationError("config_file", filePath, "config file does not exist")
	}

	data, err := loadConfigFileContent(fileManager, filePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse config content")
	}

	logger.Debug().Str("path", filePath).Msg("Configuration file loaded")
	return cfg, nil
}

// loadConfigFileContent reads the config file using FileManager
func loadConfigFileContent(fileManager *filemanager.FileManager, filePath string) ([]byte, error) {
	opts := filemanager.DefaultFileReadOptions()
	opts.MaxSize = 10 * 1024 * 1024 // 10MB max config file size

	return fileManager.ReadFile(filePath, opts)
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	if isYAMLFile(filepath.Ext(filePath)) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errorwrapper.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
		}
		return nil
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}

func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}
