package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hpungsan/lapak/internal/checkout"
	"github.com/hpungsan/lapak/internal/config"
	"github.com/hpungsan/lapak/internal/dom"
	"github.com/hpungsan/lapak/internal/errors"
	"github.com/hpungsan/lapak/internal/export"
)

// CheckoutInput contains parameters for the PreviewCheckout operation.
type CheckoutInput struct {
	Workspace string
	PageID    string            // default: active page
	Path      string            // action element, or a block or item containing one
	Qty       int64             // overrides the quantity field when > 0
	Fields    map[string]string // contact field values by role
}

// CheckoutOutput is what an exported page would do when the action is clicked.
type CheckoutOutput struct {
	PageID string `json:"page_id"`
	Path   string `json:"path"`
	*checkout.Result
}

// PreviewCheckout runs the exported page's checkout logic for one click using
// the workspace's current settings.
func PreviewCheckout(ctx context.Context, database *sql.DB, cfg *config.Config, input CheckoutInput) (*CheckoutOutput, error) {
	path, err := dom.ParsePath(input.Path)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("path: %v", err))
	}
	if input.Qty < 0 {
		return nil, errors.NewInvalidRequest("qty must not be negative")
	}
	s, err := load(ctx, database, cfg, input.Workspace)
	if err != nil {
		return nil, err
	}
	page, err := s.Resolve(input.PageID)
	if err != nil {
		return nil, err
	}
	tree, err := dom.Parse(page.HTML)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	res, err := checkout.Preview(tree, checkout.Request{Path: path, Qty: input.Qty, Fields: input.Fields},
		export.Config(s.Settings(), s))
	if err != nil {
		return nil, err
	}
	return &CheckoutOutput{PageID: page.ID, Path: path.String(), Result: res}, nil
}
