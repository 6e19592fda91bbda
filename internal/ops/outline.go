package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/lapak/internal/canvas"
	"github.com/hpungsan/lapak/internal/config"
	"github.com/hpungsan/lapak/internal/errors"
)

// OutlineInput contains parameters for the Outline operation.
type OutlineInput struct {
	Workspace string
	PageID    string // default: active page
	MaxDepth  int    // 0: unlimited
}

// OutlineOutput is the element tree of a page with the paths edit ops accept.
type OutlineOutput struct {
	PageID   string               `json:"page_id"`
	PageName string               `json:"page_name"`
	Empty    bool                 `json:"empty"`
	Blocks   []canvas.Block       `json:"blocks"`
	Elements []canvas.OutlineNode `json:"elements"`
}

// Outline returns a page's blocks and element tree.
func Outline(ctx context.Context, database *sql.DB, cfg *config.Config, input OutlineInput) (*OutlineOutput, error) {
	if input.MaxDepth < 0 {
		return nil, errors.NewInvalidRequest("max_depth must not be negative")
	}
	s, err := load(ctx, database, cfg, input.Workspace)
	if err != nil {
		return nil, err
	}
	page, err := s.Resolve(input.PageID)
	if err != nil {
		return nil, err
	}
	c, err := canvas.New(page.HTML)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &OutlineOutput{
		PageID:   page.ID,
		PageName: page.Name,
		Empty:    c.IsEmpty(),
		Blocks:   c.Blocks(),
		Elements: c.Outline(input.MaxDepth),
	}, nil
}
