package config

const (
	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Engine Defaults
	DefaultEngineBinaryPath  = "sg"
	DefaultEngineGlobs       = "*"
	DefaultEngineLanguage    = "tsx"
	DefaultEngineTimeoutSecs = 0 // no limit

	// Patch Defaults
	DefaultPatchMaxConcurrentFiles = 8
	DefaultPatchMaxFileSizeMB      = 50

	// Diff Defaults
	DefaultDiffSemanticCleanup = false

	// Store Defaults
	DefaultStoreSQLiteDBPath = "database/sgpatch/state.db"

	// Server Defaults
	DefaultServerAddr                = "127.0.0.1:6169"
	DefaultServerShutdownTimeoutSecs = 5
	DefaultServerHotReload           = false

	// ConfigPathEnv overrides config discovery when set.
	ConfigPathEnv = "SGPATCH_CONFIG_PATH"
)
