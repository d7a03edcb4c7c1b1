// Package orchestrator ties the engine, the aggregator, the patcher and the
// workspace store together into the operations exposed by the CLI and the
// HTTP API.
package orchestrator

import (
	"time"

	"github.com/aleister1102/sgpatch/internal/common/errorwrapper"
	"github.com/aleister1102/sgpatch/internal/common/filemanager"
	"github.com/aleister1102/sgpatch/internal/config"
	"github.com/aleister1102/sgpatch/internal/differ"
	"github.com/aleister1102/sgpatch/internal/engine"
	"github.com/aleister1102/sgpatch/internal/patcher"
	"github.com/aleister1102/sgpatch/internal/store"
	"github.com/rs/zerolog"
)

// ErrNoStore is returned by the state accessors when no store is attached.
var ErrNoStore = errorwrapper.NewError("workspace state store is not configured")

// Service handles the search and replace workflows. Configuration is read
// from the source on every call so a hot-reloaded file takes effect without
// rebuilding the service.
type Service struct {
	configSource config.Source
	executor     engine.CommandExecutor
	store        *store.DB
	fileManager  *filemanager.FileManager
	logger       zerolog.Logger
	baseLogger   zerolog.Logger // for components that add their own "component" field
	now          func() time.Time
}

// ServiceBuilder wires a Service
type ServiceBuilder struct {
	configSource config.Source
	executor     engine.CommandExecutor
	store        *store.DB
	logger       zerolog.Logger
}

// NewServiceBuilder creates a builder that uses default configuration, the
// real engine process and no state store until told otherwise.
func NewServiceBuilder(logger zerolog.Logger) *ServiceBuilder {
	return &ServiceBuilder{
		configSource: config.NewStatic(nil),
		logger:       logger,
	}
}

// WithConfigSource sets where configuration is read from
func (b *ServiceBuilder) WithConfigSource(source config.Source) *ServiceBuilder {
	b.configSource = source
	return b
}

// WithExecutor sets the engine process executor
func (b *ServiceBuilder) WithExecutor(executor engine.CommandExecutor) *ServiceBuilder {
	b.executor = executor
	return b
}

// WithStore attaches the workspace state store
func (b *ServiceBuilder) WithStore(db *store.DB) *ServiceBuilder {
	b.store = db
	return b
}

// Build creates the Service
func (b *ServiceBuilder) Build() *Service {
	executor := b.executor
	if executor == nil {
		executor = engine.NewExecExecutor()
	}
	return &Service{
		configSource: b.configSource,
		executor:     executor,
		store:        b.store,
		fileManager:  filemanager.NewFileManager(b.logger),
		logger:       b.logger.With().Str("component", "Orchestrator").Logger(),
		baseLogger:   b.logger,
		now:          time.Now,
	}
}

func (s *Service) runner(cfg *config.GlobalConfig) *engine.Runner {
	return engine.NewRunner(engine.RunnerConfig{
		BinaryPath: cfg.EngineConfig.BinaryPath,
		Timeout:    time.Duration(cfg.EngineConfig.TimeoutSecs) * time.Second,
	}, s.executor, s.baseLogger)
}

func (s *Service) aggregator(cfg *config.GlobalConfig) *differ.Aggregator {
	return differ.NewAggregator(differ.DiffConfigFrom(cfg.DiffConfig), s.baseLogger)
}

func (s *Service) batchApplier(cfg *config.GlobalConfig) *patcher.BatchApplier {
	filePatcher := patcher.NewFilePatcher(s.fileManager, cfg.PatchConfig.MaxFileSizeBytes(), s.baseLogger)
	return patcher.NewBatchApplier(filePatcher, patcher.BatchApplierConfig{
		MaxConcurrentFiles: cfg.PatchConfig.MaxConcurrentFiles,
	}, s.baseLogger)
}
