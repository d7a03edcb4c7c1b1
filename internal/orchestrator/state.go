package orchestrator

import (
	"context"
	"encoding/json"

	"github.com/aleister1102/sgpatch/internal/common/errorwrapper"
	"github.com/aleister1102/sgpatch/internal/store"
)

// HasStore reports whether workspace state is persisted.
func (s *Service) HasStore() bool {
	return s.store != nil
}

// GetState returns the raw JSON value stored under key.
func (s *Service) GetState(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if s.store == nil {
		return nil, false, ErrNoStore
	}
	value, found, err := s.store.GetValue(ctx, key)
	if err != nil || !found {
		return nil, found, err
	}
	return json.RawMessage(value), true, nil
}

// PutState stores value under key. value must be valid JSON.
func (s *Service) PutState(ctx context.Context, key string, value json.RawMessage) error {
	if s.store == nil {
		return ErrNoStore
	}
	if key == "" {
		return errorwrapper.NewValidationError("key", key, "state key cannot be empty")
	}
	if !json.Valid(value) {
		return errorwrapper.NewValidationError("value", string(value), "state value must be valid JSON")
	}
	return s.store.SetValue(ctx, key, string(value))
}

// ActiveProject returns the last project searched or explicitly selected
func (s *Service) ActiveProject(ctx context.Context) (string, error) {
	if s.store == nil {
		return "", ErrNoStore
	}
	return s.store.ActiveProject(ctx)
}

// ProjectInputs returns the saved query inputs of projectPath
func (s *Service) ProjectInputs(ctx context.Context, projectPath string) (store.ProjectInputs, error) {
	if s.store == nil {
		return store.ProjectInputs{}, ErrNoStore
	}
	return s.store.ProjectInputs(ctx, projectPath)
}

// RecentRuns lists the latest patch runs, newest first
func (s *Service) RecentRuns(ctx context.Context, limit int) ([]store.PatchRun, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	if limit <= 0 {
		limit = 20
	}
	return s.store.RecentPatchRuns(ctx, limit)
}
