package config

// LogConfig defines configuration for logging
type LogConfig struct {
	LogFile       string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	LogFormat     string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,logformat"`
	LogLevel      string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,loglevel"`
	MaxLogBackups int    `json:"max_log_backups,omitempty" yaml:"max_log_backups,omitempty" validate:"min=0"`
	MaxLogSizeMB  int    `json:"max_log_size_mb,omitempty" yaml:"max_log_size_mb,omitempty" validate:"min=0"`
}

// NewDefaultLogConfig creates default log configuration
func NewDefaultLogConfig() LogConfig {
	return LogConfig{
		LogFile:       DefaultLogFile,
		LogFormat:     DefaultLogFormat,
		LogLevel:      DefaultLogLevel,
		MaxLogBackups: DefaultMaxLogBackups,
		MaxLogSizeMB:  DefaultMaxLogSizeMB,
	}
}

// EngineConfig controls how the structural-search binary is invoked
type EngineConfig struct {
	BinaryPath      string `json:"binary_path,omitempty" yaml:"binary_path,omitempty" validate:"required"`
	DefaultGlobs    string `json:"default_globs,omitempty" yaml:"default_globs,omitempty"`
	DefaultLanguage string `json:"default_language,omitempty" yaml:"default_language,omitempty" validate:"omitempty,sglanguage"`
	TimeoutSecs     int    `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"min=0"` // 0 = no limit
}

// NewDefaultEngineConfig creates default engine configuration
func NewDefaultEngineConfig() EngineConfig {
	return EngineConfig{
		BinaryPath:      DefaultEngineBinaryPath,
		DefaultGlobs:    DefaultEngineGlobs,
		DefaultLanguage: DefaultEngineLanguage,
		TimeoutSecs:     DefaultEngineTimeoutSecs,
	}
}

// PatchConfig controls multi-file patching
type PatchConfig struct {
	MaxConcurrentFiles int `json:"max_concurrent_files,omitempty" yaml:"max_concurrent_files,omitempty" validate:"min=1"`
	MaxFileSizeMB      int `json:"max_file_size_mb,omitempty" yaml:"max_file_size_mb,omitempty" validate:"min=0"` // 0 = no limit
}

// NewDefaultPatchConfig creates default patch configuration
func NewDefaultPatchConfig() PatchConfig {
	return PatchConfig{
		MaxConcurrentFiles: DefaultPatchMaxConcurrentFiles,
		MaxFileSizeMB:      DefaultPatchMaxFileSizeMB,
	}
}

// MaxFileSizeBytes converts the configured limit to bytes.
func (pc PatchConfig) MaxFileSizeBytes() int64 {
	return int64(pc.MaxFileSizeMB) * 1024 * 1024
}

// DiffConfig defines configuration for match diffing
type DiffConfig struct {
	SemanticCleanup bool `json:"semantic_cleanup" yaml:"semantic_cleanup"`
}

// NewDefaultDiffConfig creates default diff configuration
func NewDefaultDiffConfig() DiffConfig {
	return DiffConfig{
		SemanticCleanup: DefaultDiffSemanticCleanup,
	}
}

// StoreConfig defines where workspace state is persisted
type StoreConfig struct {
	SQLiteDBPath string `json:"sqlite_db_path,omitempty" yaml:"sqlite_db_path,omitempty" validate:"required"`
}

// NewDefaultStoreConfig creates default store configuration
func NewDefaultStoreConfig() StoreConfig {
	return StoreConfig{
		SQLiteDBPath: DefaultStoreSQLiteDBPath,
	}
}

// ServerConfig defines configuration for the local HTTP API
type ServerConfig struct {
	Addr                string `json:"addr,omitempty" yaml:"addr,omitempty" validate:"required"`
	ShutdownTimeoutSecs int    `json:"shutdown_timeout_secs,omitempty" yaml:"shutdown_timeout_secs,omitempty" validate:"min=0"`
	HotReload           bool   `json:"hot_reload" yaml:"hot_reload"`
}

// NewDefaultServerConfig creates default server configuration
func NewDefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:                DefaultServerAddr,
		ShutdownTimeoutSecs: DefaultServerShutdownTimeoutSecs,
		HotReload:           DefaultServerHotReload,
	}
}
