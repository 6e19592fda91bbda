package ops

import (
	"context"
	"database/sql"
	"io"
	"time"

	"github.com/hpungsan/lapak/internal/config"
	"github.com/hpungsan/lapak/internal/export"
)

// RenderInput addresses the page to render.
type RenderInput struct {
	Workspace string
	PageID    string // default: active page
}

// RenderOutput is a page rendered as a standalone document.
type RenderOutput struct {
	PageID   string `json:"page_id"`
	PageName string `json:"page_name"`
	HTML     string `json:"html"`
}

// RenderPage builds the standalone document of a page without writing it
// anywhere. An empty page yields NO_CONTENT.
func RenderPage(ctx context.Context, database *sql.DB, cfg *config.Config, input RenderInput) (*RenderOutput, error) {
	s, err := load(ctx, database, cfg, input.Workspace)
	if err != nil {
		return nil, err
	}
	page, err := s.Resolve(input.PageID)
	if err != nil {
		return nil, err
	}
	doc, err := export.Build(export.Input{
		PageID:   page.ID,
		Title:    page.Name,
		HTML:     page.HTML,
		Settings: s.Settings(),
		Media:    s,
	})
	if err != nil {
		return nil, err
	}
	return &RenderOutput{PageID: page.ID, PageName: page.Name, HTML: doc}, nil
}

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Workspace string
	PageID    string // default: active page
	Path      string // default: ~/.lapak/exports/<workspace>-<page>-<timestamp>.html
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	PageID     string `json:"page_id"`
	Bytes      int    `json:"bytes"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes the standalone document of a page to an .html file.
// The file is replaced atomically; on failure an existing file is kept.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	rendered, err := RenderPage(ctx, database, cfg, RenderInput{Workspace: input.Workspace, PageID: input.PageID})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	path := input.Path
	if path == "" {
		path, err = defaultFilePath(now, ".html", workspaceName(input.Workspace), rendered.PageName)
		if err != nil {
			return nil, err
		}
	}

	written, err := writeFileAtomic(ctx, cfg, path, HTMLExtensions, func(w io.Writer) error {
		_, err := io.WriteString(w, rendered.HTML)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ExportOutput{
		Path:       written,
		PageID:     rendered.PageID,
		Bytes:      len(rendered.HTML),
		ExportedAt: now.Unix(),
	}, nil
}
