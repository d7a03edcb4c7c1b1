package orchestrator

import (
	"context"
	"strings"

	"github.com/aleister1102/sgpatch/internal/config"
	"github.com/aleister1102/sgpatch/internal/differ"
	"github.com/aleister1102/sgpatch/internal/engine"
	"github.com/aleister1102/sgpatch/internal/models"
	"github.com/aleister1102/sgpatch/internal/store"
)

// SearchRequest is the body of a structural search. Language and Globs fall
// back to the engine defaults from configuration when empty.
type SearchRequest struct {
	Rule        string `json:"query"`
	Language    string `json:"language"`
	ProjectPath string `json:"projectPath"`
	Globs       string `json:"pathGlobs"`
}

// SearchResponse carries the grouped results and their line statistics.
type SearchResponse struct {
	Files   []models.FileResults
	Matches int
	Stats   differ.DiffStatistics
}

// Query resolves req against the configured defaults.
func (req SearchRequest) Query(cfg config.EngineConfig) engine.Query {
	q := engine.Query{
		Rule:        req.Rule,
		Language:    strings.TrimSpace(req.Language),
		ProjectPath: req.ProjectPath,
		Globs:       strings.TrimSpace(req.Globs),
	}
	if q.Language == "" {
		q.Language = cfg.DefaultLanguage
	}
	if q.Globs == "" {
		q.Globs = cfg.DefaultGlobs
	}
	return q
}

// Search runs the engine over the project and groups its records by file.
func (s *Service) Search(ctx context.Context, req SearchRequest) ([]models.FileResults, error) {
	resp, err := s.SearchWithStats(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// SearchWithStats is Search plus match and line counts.
func (s *Service) SearchWithStats(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	cfg := s.configSource.GetConfig()
	q := req.Query(cfg.EngineConfig)

	records, err := s.runner(cfg).Search(ctx, q)
	if err != nil {
		s.logger.Warn().Err(err).Str("project", q.ProjectPath).Msg("Search failed")
		return nil, err
	}

	files := s.aggregator(cfg).Aggregate(records)
	stats := differ.StatsFromLines(files)

	s.logger.Info().
		Str("project", q.ProjectPath).
		Str("language", q.Language).
		Int("matches", len(records)).
		Int("files", len(files)).
		Int("lines_added", stats.LinesAdded).
		Int("lines_removed", stats.LinesRemoved).
		Msg("Search completed")

	s.rememberInputs(ctx, q)

	return &SearchResponse{Files: files, Matches: len(records), Stats: stats}, nil
}

// rememberInputs persists the last successful query of a project. Failures are
// logged only; the search result stands on its own.
func (s *Service) rememberInputs(ctx context.Context, q engine.Query) {
	if s.store == nil {
		return
	}
	inputs := store.ProjectInputs{
		ProjectPath: q.ProjectPath,
		Rule:        q.Rule,
		Language:    q.Language,
		Globs:       q.Globs,
	}
	if err := s.store.SaveProjectInputs(ctx, inputs); err != nil {
		s.logger.Warn().Err(err).Str("project", q.ProjectPath).Msg("Failed to save project inputs")
		return
	}
	if err := s.store.SetActiveProject(ctx, q.ProjectPath); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to save active project")
	}
}

// CheckEngine reports whether the engine binary runs and its version.
func (s *Service) CheckEngine(ctx context.Context) (bool, string) {
	return s.runner(s.configSource.GetConfig()).CheckInstalled(ctx)
}
