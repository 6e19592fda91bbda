package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/lapak/internal/blocks"
	"github.com/hpungsan/lapak/internal/canvas"
	"github.com/hpungsan/lapak/internal/config"
	"github.com/hpungsan/lapak/internal/errors"
	"github.com/hpungsan/lapak/internal/workspace"
)

// CatalogOutput is the block palette grouped by category.
type CatalogOutput struct {
	Categories []CatalogCategory `json:"categories"`
}

// CatalogCategory is one palette section.
type CatalogCategory struct {
	Name   string            `json:"name"`
	Blocks []blocks.Template `json:"blocks"`
}

// Catalog lists the block templates in palette order.
func Catalog() *CatalogOutput {
	out := &CatalogOutput{}
	for _, cat := range blocks.Categories() {
		c := CatalogCategory{Name: cat}
		for _, t := range blocks.All() {
			if t.Category == cat {
				c.Blocks = append(c.Blocks, t)
			}
		}
		out.Categories = append(out.Categories, c)
	}
	return out
}

// InsertBlockInput contains parameters for the InsertBlock operation.
type InsertBlockInput struct {
	Workspace string
	PageID    string // default: active page
	BlockID   string
}

// InsertBlockOutput contains the result of the InsertBlock operation.
// Unknown block ids are ignored: Applied is false and nothing is saved.
type InsertBlockOutput struct {
	PageID  string         `json:"page_id"`
	Applied bool           `json:"applied"`
	Path    string         `json:"path,omitempty"`
	Blocks  []canvas.Block `json:"blocks"`
}

// InsertBlock appends a block fragment to the end of a page.
func InsertBlock(ctx context.Context, database *sql.DB, cfg *config.Config, input InsertBlockInput) (*InsertBlockOutput, error) {
	if strings.TrimSpace(input.BlockID) == "" {
		return nil, errors.NewInvalidRequest("block_id is required")
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

	out := &InsertBlockOutput{PageID: page.ID}
	p, ok := c.Drop(strings.TrimSpace(input.BlockID))
	if !ok {
		out.Blocks = c.Blocks()
		return out, nil
	}
	if err := commitCanvas(ctx, database, s, page.ID, c); err != nil {
		return nil, err
	}
	out.Applied = true
	out.Path = p.String()
	out.Blocks = c.Blocks()
	return out, nil
}

func commitCanvas(ctx context.Context, database *sql.DB, s *workspace.Store, pageID string, c *canvas.Canvas) error {
	if err := s.ReplaceHTML(pageID, c.Serialize()); err != nil {
		return err
	}
	return saveStore(ctx, database, s)
}
