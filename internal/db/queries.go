package db

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/hpungsan/lapak/internal/errors"
	"github.com/hpungsan/lapak/internal/workspace"
)

// WorkspaceInfo summarizes a stored workspace.
type WorkspaceInfo struct {
	Name          string `json:"name"`
	CurrentPageID string `json:"current_page_id"`
	Pages         int    `json:"pages"`
	Media         int    `json:"media"`
	UpdatedAt     int64  `json:"updated_at"`
}

// LoadWorkspace reads the workspace called name. A workspace that was never
// saved comes back as a fresh store with the default home page.
func LoadWorkspace(ctx context.Context, db *sql.DB, name string, maxPageBytes int) (*workspace.Store, error) {
	norm := workspace.Normalize(name)
	if norm == "" {
		return nil, errors.NewInvalidRequest("workspace name is required")
	}

	var (
		currentID    string
		settingsJSON string
	)
	err := db.QueryRowContext(ctx,
		`SELECT current_page_id, settings_json FROM workspaces WHERE name_norm = ?`, norm,
	).Scan(&currentID, &settingsJSON)
	if stderrors.Is(err, sql.ErrNoRows) {
		return workspace.NewNamedStore(name, maxPageBytes), nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	snap := &workspace.Snapshot{
		LapakBackup:   true,
		SchemaVersion: workspace.SchemaVersion,
		CurrentPageID: currentID,
	}
	if err := json.Unmarshal([]byte(settingsJSON), &snap.Settings); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("workspace %q: decode settings: %w", norm, err))
	}
	if snap.Pages, err = loadPages(ctx, db, norm); err != nil {
		return nil, err
	}
	if snap.Media, err = loadMedia(ctx, db, norm); err != nil {
		return nil, err
	}

	// Stored pages predate any later change to the size limit, so only new
	// writes are checked against it.
	s, err := workspace.FromSnapshot(snap, 0)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("workspace %q is inconsistent: %w", norm, err))
	}
	s.SetMaxPageBytes(maxPageBytes)
	return s, nil
}

func loadPages(ctx context.Context, db *sql.DB, norm string) ([]workspace.Page, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, html FROM pages WHERE workspace_norm = ? ORDER BY position`, norm)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var pages []workspace.Page
	for rows.Next() {
		var p workspace.Page
		if err := rows.Scan(&p.ID, &p.Name, &p.HTML); err != nil {
			return nil, errors.NewInternal(err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return pages, nil
}

func loadMedia(ctx context.Context, db *sql.DB, norm string) ([]workspace.Media, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, data_uri FROM media WHERE workspace_norm = ? ORDER BY position`, norm)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var media []workspace.Media
	for rows.Next() {
		var m workspace.Media
		if err := rows.Scan(&m.ID, &m.Name, &m.DataURI); err != nil {
			return nil, errors.NewInternal(err)
		}
		media = append(media, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return media, nil
}

// SaveWorkspace writes the whole store, replacing what was stored under its
// name, in a single transaction.
func SaveWorkspace(ctx context.Context, db *sql.DB, s *workspace.Store) error {
	norm := workspace.Normalize(s.Name())
	if norm == "" {
		return errors.NewInvalidRequest("workspace name is required")
	}
	settingsJSON, err := json.Marshal(s.Settings())
	if err != nil {
		return errors.NewInternal(err)
	}
	now := time.Now().Unix()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workspaces (name_norm, name_raw, current_page_id, settings_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name_norm) DO UPDATE SET
		  name_raw = excluded.name_raw,
		  current_page_id = excluded.current_page_id,
		  settings_json = excluded.settings_json,
		  updated_at = excluded.updated_at
	`, norm, s.Name(), s.CurrentID(), string(settingsJSON), now, now)
	if err != nil {
		return errors.NewInternal(err)
	}

	for _, table := range []string{"pages", "media"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE workspace_norm = ?", norm); err != nil {
			return errors.NewInternal(err)
		}
	}

	for i, p := range s.Pages() {
		if ctx.Err() != nil {
			return errors.NewCancelled("save workspace")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pages (workspace_norm, id, position, name, html) VALUES (?, ?, ?, ?, ?)`,
			norm, p.ID, i, p.Name, p.HTML,
		); err != nil {
			return errors.NewInternal(err)
		}
	}
	for i, m := range s.MediaList() {
		if ctx.Err() != nil {
			return errors.NewCancelled("save workspace")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO media (workspace_norm, id, position, name, data_uri) VALUES (?, ?, ?, ?, ?)`,
			norm, m.ID, i, m.Name, m.DataURI,
		); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListWorkspaces returns every stored workspace, most recently saved first.
func ListWorkspaces(ctx context.Context, db *sql.DB) ([]WorkspaceInfo, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT w.name_raw, w.current_page_id, w.updated_at,
		  (SELECT COUNT(*) FROM pages p WHERE p.workspace_norm = w.name_norm),
		  (SELECT COUNT(*) FROM media m WHERE m.workspace_norm = w.name_norm)
		FROM workspaces w
		ORDER BY w.updated_at DESC, w.name_norm
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	items := []WorkspaceInfo{}
	for rows.Next() {
		var w WorkspaceInfo
		if err := rows.Scan(&w.Name, &w.CurrentPageID, &w.UpdatedAt, &w.Pages, &w.Media); err != nil {
			return nil, errors.NewInternal(err)
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

// DeleteWorkspace removes a stored workspace with its pages and media.
func DeleteWorkspace(ctx context.Context, db *sql.DB, name string) error {
	norm := workspace.Normalize(name)
	res, err := db.ExecContext(ctx, `DELETE FROM workspaces WHERE name_norm = ?`, norm)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound("workspace", name)
	}
	return nil
}
