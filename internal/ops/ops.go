// Package ops implements the persisted workflows shared by the CLI, the MCP
// server and the web UI. Every operation loads the workspace from the
// database, applies one change and saves it back.
package ops

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/hpungsan/lapak/internal/blocks"
	"github.com/hpungsan/lapak/internal/config"
	"github.com/hpungsan/lapak/internal/db"
	"github.com/hpungsan/lapak/internal/dom"
	"github.com/hpungsan/lapak/internal/errors"
	"github.com/hpungsan/lapak/internal/workspace"
)

// DefaultWorkspace is used when no workspace is named.
const DefaultWorkspace = "default"

func workspaceName(name string) string {
	if strings.TrimSpace(name) == "" {
		return DefaultWorkspace
	}
	return name
}

func maxPageBytes(cfg *config.Config) int {
	if cfg == nil {
		return config.DefaultMaxPageBytes
	}
	return cfg.MaxPageBytes
}

// load reads a workspace without modifying it.
func load(ctx context.Context, database *sql.DB, cfg *config.Config, name string) (*workspace.Store, error) {
	return db.LoadWorkspace(ctx, database, workspaceName(name), maxPageBytes(cfg))
}

// mutate loads a workspace, applies fn and saves the result. Nothing is saved
// when fn fails.
func mutate(ctx context.Context, database *sql.DB, cfg *config.Config, name string, fn func(s *workspace.Store) error) (*workspace.Store, error) {
	s, err := load(ctx, database, cfg, name)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	if err := db.SaveWorkspace(ctx, database, s); err != nil {
		return nil, err
	}
	return s, nil
}

// PageItem summarizes a page.
type PageItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Bytes   int    `json:"bytes"`
	Blocks  int    `json:"blocks"`
	Current bool   `json:"current"`
}

func pageItem(p workspace.Page, currentID string) PageItem {
	return PageItem{
		ID:      p.ID,
		Name:    p.Name,
		Bytes:   len(p.HTML),
		Blocks:  countBlocks(p.HTML),
		Current: p.ID == currentID,
	}
}

func countBlocks(html string) int {
	t, err := dom.Parse(html)
	if err != nil {
		return 0
	}
	n := 0
	for _, c := range t.Children {
		if blocks.IsBlockRoot(c) {
			n++
		}
	}
	return n
}

// toLapakError passes coded errors through and wraps anything else as INTERNAL.
func toLapakError(err error) error {
	var le *errors.LapakError
	if stderrors.As(err, &le) {
		return le
	}
	return errors.NewInternal(err)
}

func saveStore(ctx context.Context, database *sql.DB, s *workspace.Store) error {
	return db.SaveWorkspace(ctx, database, s)
}
