package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aleister1102/sgpatch/internal/common/filemanager"
	"github.com/aleister1102/sgpatch/internal/config"
	"github.com/aleister1102/sgpatch/internal/logger"
	"github.com/aleister1102/sgpatch/internal/models"
	"github.com/aleister1102/sgpatch/internal/orchestrator"
	"github.com/aleister1102/sgpatch/internal/server"
	"github.com/aleister1102/sgpatch/internal/store"
	"github.com/aleister1102/sgpatch/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// app carries what every subcommand needs
type app struct {
	flags       AppFlags
	configs     *config.ConfigManager
	logger      zerolog.Logger
	service     *orchestrator.Service
	store       *store.DB
	fileManager *filemanager.FileManager
	stdin       io.Reader
	stdout      io.Writer
	printer     *ui.Printer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags, err := ParseFlags(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "[FATAL] %v\n", err)
		return 2
	}

	configs, err := config.NewConfigManager(flags.ConfigFile, config.ConfigManagerOptions{
		Logger:           zerolog.Nop(),
		HotReloadEnabled: flags.Command == "serve",
		ReloadDelay:      500 * time.Millisecond,
	})
	if err != nil {
		fmt.Fprintf(stderr, "[FATAL] Could not load configuration: %v\n", err)
		return 1
	}
	defer configs.Close()
	cfg := configs.GetConfig()

	appLogger, err := logger.New(cfg.LogConfig)
	if err != nil {
		fmt.Fprintf(stderr, "[FATAL] Could not initialize logger: %v\n", err)
		return 1
	}
	defer appLogger.Close()
	zLogger := *appLogger.GetZerolog()
	zLogger.Debug().Str("config_path", configs.GetConfigPath()).Str("command", flags.Command).Msg("Starting sgpatch")

	a := &app{
		flags:       flags,
		configs:     configs,
		logger:      zLogger,
		fileManager: filemanager.NewFileManager(zLogger),
		stdin:       stdin,
		stdout:      stdout,
		printer:     ui.NewPrinter(stderr, ""),
	}

	builder := orchestrator.NewServiceBuilder(zLogger).WithConfigSource(configs)
	if flags.Command != "check" {
		db, err := store.NewDB(cfg.StoreConfig.SQLiteDBPath, zLogger)
		if err != nil {
			zLogger.Warn().Err(err).Msg("Workspace state store unavailable, continuing without it")
		} else {
			defer db.Close()
			a.store = db
			builder = builder.WithStore(db)
		}
	}
	a.service = builder.Build()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch flags.Command {
	case "search":
		err = a.search(ctx)
	case "apply":
		err = a.apply(ctx)
	case "check":
		err = a.check(ctx)
	case "serve":
		err = a.serve(ctx)
	case "runs":
		err = a.runs(ctx)
	}
	if err != nil {
		a.printer.Error(err)
		return 1
	}
	return 0
}

// projectPath resolves --project, then the active project, then the cwd.
func (a *app) projectPath(ctx context.Context) (string, error) {
	if a.flags.Project != "" {
		return a.flags.Project, nil
	}
	if a.store != nil {
		if active, err := a.store.ActiveProject(ctx); err == nil && active != "" {
			return active, nil
		}
	}
	return os.Getwd()
}

func (a *app) search(ctx context.Context) error {
	project, err := a.projectPath(ctx)
	if err != nil {
		return err
	}

	req := orchestrator.SearchRequest{
		Rule:        a.flags.Rule,
		Language:    a.flags.Language,
		ProjectPath: project,
		Globs:       a.flags.Globs,
	}

	if a.flags.RuleFile != "" {
		data, err := a.fileManager.ReadFile(a.flags.RuleFile, filemanager.DefaultFileReadOptions())
		if err != nil {
			return err
		}
		req.Rule = string(data)
	}

	// without a rule, re-run the last query saved for the project
	if req.Rule == "" && a.store != nil {
		saved, err := a.store.ProjectInputs(ctx, project)
		if err != nil {
			return err
		}
		req.Rule = saved.Rule
		if req.Language == "" {
			req.Language = saved.Language
		}
		if req.Globs == "" {
			req.Globs = saved.Globs
		}
	}

	files, err := a.service.Search(ctx, req)
	if err != nil {
		return err
	}

	if a.flags.JSON {
		return json.NewEncoder(a.stdout).Encode(files)
	}
	ui.NewPrinter(a.stdout, project).SearchResults(files)
	return nil
}

func (a *app) apply(ctx context.Context) error {
	var input io.Reader = a.stdin
	if a.flags.PatchFile != "" {
		data, err := a.fileManager.ReadFile(a.flags.PatchFile, filemanager.DefaultFileReadOptions())
		if err != nil {
			return err
		}
		input = bytes.NewReader(data)
	}

	var req models.PatchRequest
	if err := json.NewDecoder(input).Decode(&req); err != nil {
		return fmt.Errorf("failed to decode patch request: %w", err)
	}
	if a.flags.Project != "" || req.ProjectPath == "" {
		project, err := a.projectPath(ctx)
		if err != nil {
			return err
		}
		req.ProjectPath = project
	}

	result, err := a.service.Replace(ctx, req)
	if err != nil {
		return err
	}

	ui.NewPrinter(a.stdout, req.ProjectPath).ReplaceSummary(result.RunID, result.BatchResult)
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", result.Failed, len(result.Outcomes))
	}
	return nil
}

func (a *app) check(ctx context.Context) error {
	installed, version := a.service.CheckEngine(ctx)
	ui.NewPrinter(a.stdout, "").EngineStatus(a.configs.GetConfig().EngineConfig.BinaryPath, installed, version)
	if !installed {
		return errors.New("structural-search engine unavailable")
	}
	return nil
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.configs.GetConfig()
	if cfg.ServerConfig.HotReload {
		a.configs.OnReload(func(*config.GlobalConfig) {
			a.logger.Info().Msg("Configuration reloaded")
		})
		a.configs.StartHotReload(ctx)
	}

	addr := cfg.ServerConfig.Addr
	if a.flags.Addr != "" {
		addr = a.flags.Addr
	}

	srv := server.NewServer(server.Config{
		Addr:            addr,
		ShutdownTimeout: time.Duration(cfg.ServerConfig.ShutdownTimeoutSecs) * time.Second,
	}, a.service, a.logger)
	return srv.ListenAndServe(ctx)
}

func (a *app) runs(ctx context.Context) error {
	runs, err := a.service.RecentRuns(ctx, a.flags.Limit)
	if err != nil {
		return err
	}
	ui.NewPrinter(a.stdout, "").Runs(runs)
	return nil
}
