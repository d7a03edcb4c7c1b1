package store

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	// ActiveProjectKey holds the path of the project currently open.
	ActiveProjectKey = "activeProjectPath"

	DefaultLanguage = "tsx"
	DefaultGlobs    = "*"
)

// ProjectInputs are the last query inputs used in a project
type ProjectInputs struct {
	ProjectPath string `json:"projectPath"`
	Rule        string `json:"rule"`
	Language    string `json:"language"`
	Globs       string `json:"globs"`
}

// ProjectKey is the state key of one per-project field.
func ProjectKey(projectPath, field string) string {
	return fmt.Sprintf("storePersistedState:%s:%s", projectPath, field)
}

// GetJSON decodes the value under key into dst. found is false when the key
// is unset, leaving dst untouched.
func (d *DB) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, found, err := d.GetValue(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("failed to decode state %q: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes value and stores it under key
func (d *DB) SetJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode state %q: %w", key, err)
	}
	return d.SetValue(ctx, key, string(raw))
}

// ActiveProject returns the active project path, or "" when none is set
func (d *DB) ActiveProject(ctx context.Context) (string, error) {
	var path *string
	if _, err := d.GetJSON(ctx, ActiveProjectKey, &path); err != nil {
		return "", err
	}
	if path == nil {
		return "", nil
	}
	return *path, nil
}

// SetActiveProject records the active project. An empty path clears it.
func (d *DB) SetActiveProject(ctx context.Context, path string) error {
	if path == "" {
		return d.SetJSON(ctx, ActiveProjectKey, nil)
	}
	return d.SetJSON(ctx, ActiveProjectKey, path)
}

// ProjectInputs loads the saved inputs for projectPath, with defaults for
// anything never saved.
func (d *DB) ProjectInputs(ctx context.Context, projectPath string) (ProjectInputs, error) {
	inputs := ProjectInputs{
		ProjectPath: projectPath,
		Language:    DefaultLanguage,
		Globs:       DefaultGlobs,
	}

	fields := map[string]*string{
		"rule":     &inputs.Rule,
		"language": &inputs.Language,
		"globs":    &inputs.Globs,
	}
	for field, dst := range fields {
		if _, err := d.GetJSON(ctx, ProjectKey(projectPath, field), dst); err != nil {
			return ProjectInputs{}, err
		}
	}
	return inputs, nil
}

// SaveProjectInputs stores every field of inputs
func (d *DB) SaveProjectInputs(ctx context.Context, inputs ProjectInputs) error {
	fields := map[string]string{
		"rule":     inputs.Rule,
		"language": inputs.Language,
		"globs":    inputs.Globs,
	}
	for field, value := range fields {
		if err := d.SetJSON(ctx, ProjectKey(inputs.ProjectPath, field), value); err != nil {
			return err
		}
	}
	return nil
}
