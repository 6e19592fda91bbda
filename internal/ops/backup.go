package ops

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"strings"
	"time"

	"github.com/hpungsan/lapak/internal/config"
	"github.com/hpungsan/lapak/internal/db"
	"github.com/hpungsan/lapak/internal/errors"
	"github.com/hpungsan/lapak/internal/workspace"
)

// MaxBackupBytes bounds the size of a backup file accepted by Restore.
const MaxBackupBytes = 64 << 20

// BackupInput contains parameters for the Backup operation.
type BackupInput struct {
	Workspace string
	Path      string // default: ~/.lapak/exports/<workspace>-<timestamp>.json
}

// BackupOutput contains the result of the Backup operation.
type BackupOutput struct {
	Path       string `json:"path"`
	Workspace  string `json:"workspace"`
	Pages      int    `json:"pages"`
	Media      int    `json:"media"`
	ExportedAt int64  `json:"exported_at"`
}

// Backup writes a whole workspace (pages, settings, media) to a JSON file.
func Backup(ctx context.Context, database *sql.DB, cfg *config.Config, input BackupInput) (*BackupOutput, error) {
	s, err := load(ctx, database, cfg, input.Workspace)
	if err != nil {
		return nil, err
	}
	snap := s.Snapshot()

	path := input.Path
	if path == "" {
		path, err = defaultFilePath(time.Unix(snap.ExportedAt, 0), ".json", s.Name())
		if err != nil {
			return nil, err
		}
	}

	written, err := writeFileAtomic(ctx, cfg, path, BackupExtensions, snap.Encode)
	if err != nil {
		return nil, err
	}
	return &BackupOutput{
		Path:       written,
		Workspace:  s.Name(),
		Pages:      len(snap.Pages),
		Media:      len(snap.Media),
		ExportedAt: snap.ExportedAt,
	}, nil
}

// RestoreInput contains parameters for the Restore operation.
type RestoreInput struct {
	Path      string // required
	Workspace string // default: the workspace named in the backup
}

// RestoreOutput contains the result of the Restore operation.
type RestoreOutput struct {
	Workspace     string `json:"workspace"`
	Pages         int    `json:"pages"`
	Media         int    `json:"media"`
	CurrentPageID string `json:"current_page_id"`
}

// Restore replaces a workspace with the contents of a backup file.
// The whole document is parsed and validated before anything is written;
// a rejected backup (IMPORT_REJECTED) leaves the stored workspace untouched.
func Restore(ctx context.Context, database *sql.DB, cfg *config.Config, input RestoreInput) (*RestoreOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	data, err := readFileLimited(cfg, input.Path, BackupExtensions, MaxBackupBytes)
	if err != nil {
		return nil, err
	}
	return RestoreFrom(ctx, database, cfg, bytes.NewReader(data), input.Workspace)
}

// RestoreFrom is Restore reading the backup document from r.
func RestoreFrom(ctx context.Context, database *sql.DB, cfg *config.Config, r io.Reader, target string) (*RestoreOutput, error) {
	snap, err := workspace.DecodeSnapshot(io.LimitReader(r, MaxBackupBytes), maxPageBytes(cfg))
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(target); name != "" {
		snap.Settings.Workspace = name
	}

	s, err := workspace.FromSnapshot(snap, maxPageBytes(cfg))
	if err != nil {
		return nil, err
	}
	if err := db.SaveWorkspace(ctx, database, s); err != nil {
		return nil, err
	}
	return &RestoreOutput{
		Workspace:     s.Name(),
		Pages:         len(snap.Pages),
		Media:         len(snap.Media),
		CurrentPageID: s.CurrentID(),
	}, nil
}
