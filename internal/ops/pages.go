package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/lapak/internal/config"
	"github.com/hpungsan/lapak/internal/db"
	"github.com/hpungsan/lapak/internal/errors"
	"github.com/hpungsan/lapak/internal/workspace"
)

// ListPagesInput contains parameters for the ListPages operation.
type ListPagesInput struct {
	Workspace string
}

// ListPagesOutput contains the result of the ListPages operation.
type ListPagesOutput struct {
	Workspace     string     `json:"workspace"`
	CurrentPageID string     `json:"current_page_id"`
	Pages         []PageItem `json:"pages"`
}

// ListPages returns the pages of a workspace in order.
func ListPages(ctx context.Context, database *sql.DB, cfg *config.Config, input ListPagesInput) (*ListPagesOutput, error) {
	s, err := load(ctx, database, cfg, input.Workspace)
	if err != nil {
		return nil, err
	}
	return listOutput(s), nil
}

func listOutput(s *workspace.Store) *ListPagesOutput {
	out := &ListPagesOutput{Workspace: s.Name(), CurrentPageID: s.CurrentID()}
	for _, p := range s.Pages() {
		out.Pages = append(out.Pages, pageItem(p, s.CurrentID()))
	}
	return out
}

// PageInput addresses one page. An empty PageID means the active page.
type PageInput struct {
	Workspace string
	PageID    string
}

// PageOutput describes a page after an operation.
type PageOutput struct {
	Workspace string   `json:"workspace"`
	Page      PageItem `json:"page"`
}

// AddPageInput contains parameters for the AddPage operation.
type AddPageInput struct {
	Workspace string
	Name      string // default: "New Page"
}

// AddPage appends an empty page and makes it active.
func AddPage(ctx context.Context, database *sql.DB, cfg *config.Config, input AddPageInput) (*PageOutput, error) {
	var page workspace.Page
	s, err := mutate(ctx, database, cfg, input.Workspace, func(s *workspace.Store) error {
		page = s.AddPage(input.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &PageOutput{Workspace: s.Name(), Page: pageItem(page, s.CurrentID())}, nil
}

// DuplicatePage copies a page, name and content, right after itself and makes
// the copy active.
func DuplicatePage(ctx context.Context, database *sql.DB, cfg *config.Config, input PageInput) (*PageOutput, error) {
	var page workspace.Page
	s, err := mutate(ctx, database, cfg, input.Workspace, func(s *workspace.Store) error {
		src, err := s.Resolve(input.PageID)
		if err != nil {
			return err
		}
		page, err = s.DuplicatePage(src.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &PageOutput{Workspace: s.Name(), Page: pageItem(page, s.CurrentID())}, nil
}

// SelectPage makes a page active.
func SelectPage(ctx context.Context, database *sql.DB, cfg *config.Config, input PageInput) (*PageOutput, error) {
	if strings.TrimSpace(input.PageID) == "" {
		return nil, errors.NewInvalidRequest("page_id is required")
	}
	s, err := mutate(ctx, database, cfg, input.Workspace, func(s *workspace.Store) error {
		return s.Select(input.PageID)
	})
	if err != nil {
		return nil, err
	}
	return &PageOutput{Workspace: s.Name(), Page: pageItem(s.Current(), s.CurrentID())}, nil
}

// RenamePageInput contains parameters for the RenamePage operation.
type RenamePageInput struct {
	Workspace string
	PageID    string
	Name      string
}

// RenamePage changes a page's name.
func RenamePage(ctx context.Context, database *sql.DB, cfg *config.Config, input RenamePageInput) (*PageOutput, error) {
	var page workspace.Page
	s, err := mutate(ctx, database, cfg, input.Workspace, func(s *workspace.Store) error {
		p, err := s.Resolve(input.PageID)
		if err != nil {
			return err
		}
		if err := s.Rename(p.ID, input.Name); err != nil {
			return err
		}
		page, err = s.Page(p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &PageOutput{Workspace: s.Name(), Page: pageItem(page, s.CurrentID())}, nil
}

// DeletePageOutput contains the result of the DeletePage operation.
type DeletePageOutput struct {
	Deleted       string `json:"deleted"`
	CurrentPageID string `json:"current_page_id"`
}

// DeletePage removes a page. The last page of a workspace cannot be deleted.
func DeletePage(ctx context.Context, database *sql.DB, cfg *config.Config, input PageInput) (*DeletePageOutput, error) {
	var id string
	s, err := mutate(ctx, database, cfg, input.Workspace, func(s *workspace.Store) error {
		p, err := s.Resolve(input.PageID)
		if err != nil {
			return err
		}
		id = p.ID
		return s.DeletePage(id)
	})
	if err != nil {
		return nil, err
	}
	return &DeletePageOutput{Deleted: id, CurrentPageID: s.CurrentID()}, nil
}

// GetPageOutput is a page with its markup.
type GetPageOutput struct {
	Workspace string   `json:"workspace"`
	Page      PageItem `json:"page"`
	HTML      string   `json:"html"`
}

// GetPage returns a page's markup blob.
func GetPage(ctx context.Context, database *sql.DB, cfg *config.Config, input PageInput) (*GetPageOutput, error) {
	s, err := load(ctx, database, cfg, input.Workspace)
	if err != nil {
		return nil, err
	}
	p, err := s.Resolve(input.PageID)
	if err != nil {
		return nil, err
	}
	return &GetPageOutput{Workspace: s.Name(), Page: pageItem(p, s.CurrentID()), HTML: p.HTML}, nil
}

// ListWorkspaces returns the stored workspaces.
func ListWorkspaces(ctx context.Context, database *sql.DB) ([]db.WorkspaceInfo, error) {
	return db.ListWorkspaces(ctx, database)
}

// DeleteWorkspaceInput contains parameters for the DeleteWorkspace operation.
type DeleteWorkspaceInput struct {
	Workspace string
}

// DeleteWorkspaceOutput contains the result of the DeleteWorkspace operation.
type DeleteWorkspaceOutput struct {
	Deleted string `json:"deleted"`
}

// DeleteWorkspace removes a stored workspace with its pages and media. The
// name is required so the default workspace is never dropped by omission.
func DeleteWorkspace(ctx context.Context, database *sql.DB, input DeleteWorkspaceInput) (*DeleteWorkspaceOutput, error) {
	name := strings.TrimSpace(input.Workspace)
	if name == "" {
		return nil, errors.NewInvalidRequest("workspace is required")
	}
	if err := db.DeleteWorkspace(ctx, database, name); err != nil {
		return nil, err
	}
	return &DeleteWorkspaceOutput{Deleted: name}, nil
}
