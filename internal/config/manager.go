package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Source hands out the configuration currently in effect.
type Source interface {
	GetConfig() *GlobalConfig
}

// Static wraps a fixed configuration as a Source.
type Static struct {
	cfg *GlobalConfig
}

// NewStatic creates a Source that always returns a copy of cfg.
func NewStatic(cfg *GlobalConfig) *Static {
	return &Static{cfg: cfg}
}

// GetConfig returns a copy of the wrapped configuration
func (s *Static) GetConfig() *GlobalConfig {
	if s.cfg == nil {
		return NewDefaultGlobalConfig()
	}
	dst := *s.cfg
	return &dst
}

// ConfigManager keeps the loaded configuration and optionally reloads it when
// the file changes on disk. Reloaded configs are validated before they replace
// the current one.
type ConfigManager struct {
	mu           sync.RWMutex
	config       *GlobalConfig
	configPath   string
	logger       zerolog.Logger
	watcher      *fsnotify.Watcher
	stopChan     chan struct{}
	stopOnce     sync.Once
	lastModified time.Time

	hotReloadEnabled bool
	reloadDelay      time.Duration
	onReload         []func(*GlobalConfig)
}

// ConfigManagerOptions holds options for creating a ConfigManager
type ConfigManagerOptions struct {
	Logger           zerolog.Logger
	HotReloadEnabled bool
	ReloadDelay      time.Duration
}

// DefaultConfigManagerOptions returns default options for ConfigManager
func DefaultConfigManagerOptions() ConfigManagerOptions {
	return ConfigManagerOptions{
		Logger:           zerolog.Nop(),
		HotReloadEnabled: false,
		ReloadDelay:      500 * time.Millisecond,
	}
}

// NewConfigManager loads and validates the configuration at configPath (or
// the discovered default) and prepares the file watcher when requested.
func NewConfigManager(configPath string, opts ConfigManagerOptions) (*ConfigManager, error) {
	cm := &ConfigManager{
		configPath:       GetConfigPath(configPath),
		logger:           opts.Logger.With().Str("component", "ConfigManager").Logger(),
		stopChan:         make(chan struct{}),
		hotReloadEnabled: opts.HotReloadEnabled,
		reloadDelay:      opts.ReloadDelay,
	}

	if err := cm.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load initial configuration: %w", err)
	}

	if cm.hotReloadEnabled {
		if cm.configPath == "" {
			cm.logger.Warn().Msg("No config file in use, hot-reload disabled")
			cm.hotReloadEnabled = false
		} else if err := cm.setupFileWatcher(); err != nil {
			cm.logger.Warn().Err(err).Msg("Failed to setup file watcher, hot-reload disabled")
			cm.hotReloadEnabled = false
		}
	}

	return cm, nil
}

// GetConfig returns a copy of the current configuration (thread-safe)
func (cm *ConfigManager) GetConfig() *GlobalConfig {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.config == nil {
		return NewDefaultGlobalConfig()
	}
	dst := *cm.config
	return &dst
}

// GetConfigPath returns the configuration file in use, or "" for defaults
func (cm *ConfigManager) GetConfigPath() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.configPath
}

// IsHotReloadEnabled returns whether hot-reload is active
func (cm *ConfigManager) IsHotReloadEnabled() bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.hotReloadEnabled
}

// OnReload registers fn to run after every successful reload.
func (cm *ConfigManager) OnReload(fn func(*GlobalConfig)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.onReload = append(cm.onReload, fn)
}

// ReloadConfig re-reads the configuration file. On failure the previous
// configuration stays in effect.
func (cm *ConfigManager) ReloadConfig() error {
	cm.mu.Lock()
	err := cm.loadConfig()
	callbacks := append([]func(*GlobalConfig){}, cm.onReload...)
	var snapshot GlobalConfig
	if cm.config != nil {
		snapshot = *cm.config
	}
	cm.mu.Unlock()

	if err != nil {
		return err
	}
	for _, fn := range callbacks {
		fn(&snapshot)
	}
	return nil
}

// StartHotReload starts the hot-reload goroutine (non-blocking)
func (cm *ConfigManager) StartHotReload(ctx context.Context) {
	if !cm.IsHotReloadEnabled() {
		return
	}
	go cm.hotReloadLoop(ctx)
}

// Close stops the hot-reload loop and releases the watcher
func (cm *ConfigManager) Close() error {
	cm.stopOnce.Do(func() { close(cm.stopChan) })

	if cm.watcher != nil {
		return cm.watcher.Close()
	}
	return nil
}

// loadConfig assumes the lock is held.
func (cm *ConfigManager) loadConfig() error {
	cfg, err := LoadGlobalConfig(cm.configPath, cm.logger)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return err
	}

	if cm.configPath != "" {
		if stat, err := os.Stat(cm.configPath); err == nil {
			cm.lastModified = stat.ModTime()
		}
	}

	cm.config = cfg
	cm.logger.Info().Str("path", cm.configPath).Msg("Configuration loaded successfully")
	return nil
}

// setupFileWatcher watches the directory holding the config file, since
// editors often replace the file instead of writing it in place.
func (cm *ConfigManager) setupFileWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	configDir := filepath.Dir(cm.configPath)
	if err := watcher.Add(configDir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch config directory '%s': %w", configDir, err)
	}

	cm.watcher = watcher
	cm.logger.Info().Str("directory", configDir).Msg("File watcher setup for hot-reload")
	return nil
}

func (cm *ConfigManager) hotReloadLoop(ctx context.Context) {
	if cm.watcher == nil {
		return
	}

	target := filepath.Clean(cm.configPath)
	reloadTimer := time.NewTimer(0)
	reloadTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			cm.logger.Debug().Msg("Hot-reload loop stopped due to context cancellation")
			return

		case <-cm.stopChan:
			cm.logger.Debug().Msg("Hot-reload loop stopped")
			return

		case event, ok := <-cm.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) == target && event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				cm.logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Config file change detected")
				reloadTimer.Reset(cm.reloadDelay)
			}

		case err, ok := <-cm.watcher.Errors:
			if !ok {
				return
			}
			cm.logger.Error().Err(err).Msg("File watcher error")

		case <-reloadTimer.C:
			stat, err := os.Stat(target)
			if err != nil {
				continue
			}
			cm.mu.RLock()
			changed := stat.ModTime().After(cm.lastModified)
			cm.mu.RUnlock()
			if !changed {
				continue
			}
			if err := cm.ReloadConfig(); err != nil {
				cm.logger.Error().Err(err).Msg("Failed to reload configuration, keeping previous")
			} else {
				cm.logger.Info().Msg("Configuration reloaded")
			}
		}
	}
}
