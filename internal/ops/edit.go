package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hpungsan/lapak/internal/canvas"
	"github.com/hpungsan/lapak/internal/config"
	"github.com/hpungsan/lapak/internal/dom"
	"github.com/hpungsan/lapak/internal/errors"
	"github.com/hpungsan/lapak/internal/inspector"
)

// EditMode decides what a path selects.
type EditMode string

const (
	// EditModeClick selects the block enclosing the path.
	EditModeClick EditMode = "click"
	// EditModeFocus selects the element at the path itself.
	EditModeFocus EditMode = "focus"
)

// EditInput contains parameters for the Edit operation.
type EditInput struct {
	Workspace string
	PageID    string   // default: active page
	Path      string   // dotted element path from Outline
	Mode      EditMode // default: focus
	Op        string   // one of inspector.Ops
	Value     string   // op argument; a media id for the image op
}

// EditOutput contains the result of the Edit operation.
type EditOutput struct {
	PageID    string         `json:"page_id"`
	Op        string         `json:"op"`
	Applied   bool           `json:"applied"`
	Target    string         `json:"target,omitempty"`
	Selection string         `json:"selection,omitempty"`
	Blocks    []canvas.Block `json:"blocks"`
}

// Edit selects an element of a page and applies one inspector operation to
// it. A path that selects nothing, or an operation with no effect, reports
// Applied=false and leaves the page untouched.
func Edit(ctx context.Context, database *sql.DB, cfg *config.Config, input EditInput) (*EditOutput, error) {
	op, err := inspector.ParseOp(input.Op)
	if err != nil {
		return nil, err
	}
	path, err := dom.ParsePath(input.Path)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("path: %v", err))
	}
	mode := EditMode(strings.ToLower(strings.TrimSpace(string(input.Mode))))
	if mode == "" {
		mode = EditModeFocus
	}
	if mode != EditModeClick && mode != EditModeFocus {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("mode must be %q or %q", EditModeClick, EditModeFocus))
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

	out := &EditOutput{PageID: page.ID, Op: string(op)}
	var target dom.Path
	var ok bool
	if mode == EditModeClick {
		target, ok = c.Click(path)
	} else {
		target, ok = c.Focus(path)
	}
	if !ok {
		out.Blocks = c.Blocks()
		return out, nil
	}
	out.Target = target.String()

	bridge := inspector.New(c, s, page.ID)
	var applied bool
	if op == inspector.OpImage {
		m, found := s.Media(strings.TrimSpace(input.Value))
		if !found {
			return nil, errors.NewNotFound("media", input.Value)
		}
		applied, err = bridge.BindImage(inspector.Image{ID: m.ID, Name: m.Name, DataURI: m.DataURI})
	} else {
		applied, err = bridge.Apply(op, input.Value)
	}
	if err != nil {
		return nil, toLapakError(err)
	}

	if applied {
		if err := saveStore(ctx, database, s); err != nil {
			return nil, err
		}
	}
	out.Applied = applied
	if sel := c.Selection(); sel != nil {
		out.Selection = sel.String()
	}
	out.Blocks = c.Blocks()
	return out, nil
}
