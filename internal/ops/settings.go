package ops

import (
	"bytes"
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/lapak/internal/config"
	"github.com/hpungsan/lapak/internal/errors"
	"github.com/hpungsan/lapak/internal/workspace"
)

// maxSettingsFileBytes bounds a settings YAML file.
const maxSettingsFileBytes = 1 << 20

// SettingsOutput is a workspace's settings.
type SettingsOutput struct {
	Workspace string             `json:"workspace"`
	Settings  workspace.Settings `json:"settings"`
}

// GetSettings returns a workspace's settings.
func GetSettings(ctx context.Context, database *sql.DB, cfg *config.Config, ws string) (*SettingsOutput, error) {
	s, err := load(ctx, database, cfg, ws)
	if err != nil {
		return nil, err
	}
	return &SettingsOutput{Workspace: s.Name(), Settings: s.Settings()}, nil
}

// UpdateSettingsInput contains parameters for the UpdateSettings operation.
type UpdateSettingsInput struct {
	Workspace string
	Patch     workspace.SettingsPatch
}

// UpdateSettings applies a partial settings update. Theme and language are
// validated and media references must exist.
func UpdateSettings(ctx context.Context, database *sql.DB, cfg *config.Config, input UpdateSettingsInput) (*SettingsOutput, error) {
	if input.Patch.Empty() {
		return nil, errors.NewInvalidRequest("no settings to update")
	}
	var next workspace.Settings
	s, err := mutate(ctx, database, cfg, input.Workspace, func(s *workspace.Store) error {
		var err error
		next, err = s.UpdateSettings(input.Patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &SettingsOutput{Workspace: s.Name(), Settings: next}, nil
}

// ApplySettingsFileInput contains parameters for the ApplySettingsFile operation.
type ApplySettingsFileInput struct {
	Workspace string
	Path      string // .yaml or .yml
}

// ApplySettingsFile reads a YAML settings patch and applies it. Keys use the
// same snake_case names as the JSON form; unknown keys are rejected.
func ApplySettingsFile(ctx context.Context, database *sql.DB, cfg *config.Config, input ApplySettingsFileInput) (*SettingsOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	data, err := readFileLimited(cfg, input.Path, SettingsExtensions, maxSettingsFileBytes)
	if err != nil {
		return nil, err
	}
	patch, err := DecodeSettingsYAML(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return UpdateSettings(ctx, database, cfg, UpdateSettingsInput{Workspace: input.Workspace, Patch: patch})
}

// DecodeSettingsYAML parses a YAML settings patch.
func DecodeSettingsYAML(r io.Reader) (workspace.SettingsPatch, error) {
	var patch workspace.SettingsPatch
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&patch); err != nil {
		if stderrors.Is(err, io.EOF) {
			return patch, errors.NewInvalidRequest("settings file is empty")
		}
		return patch, errors.NewInvalidRequest(fmt.Sprintf("invalid settings file: %v", err))
	}
	return patch, nil
}
