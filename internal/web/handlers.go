package web

import (
	"database/sql"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hpungsan/lapak/internal/config"
	"github.com/hpungsan/lapak/internal/errors"
	"github.com/hpungsan/lapak/internal/ops"
)

// previewCSP lets the exported document run its own inline checkout script
// while keeping it from loading anything else.
const previewCSP = "default-src 'none'; script-src 'unsafe-inline'; style-src 'unsafe-inline'; img-src data:; frame-ancestors 'self'"

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

func workspaceParam(r *http.Request) string {
	if ws := strings.TrimSpace(r.URL.Query().Get("workspace")); ws != "" {
		return ws
	}
	return ops.DefaultWorkspace
}

func pagePath(workspace, id string) string {
	return "/pages/" + url.PathEscape(id) + "?workspace=" + url.QueryEscape(workspace)
}

func pagesPath(workspace string) string {
	return "/pages?workspace=" + url.QueryEscape(workspace)
}

func (h *Handlers) pageData(title, nav, workspace string) PageData {
	return PageData{Title: title, Version: h.renderer.version, Nav: nav, Workspace: workspace}
}

// HandlePages handles GET /pages: list the pages of a workspace.
func (h *Handlers) HandlePages(w http.ResponseWriter, r *http.Request) {
	workspace := workspaceParam(r)

	list, err := ops.ListPages(r.Context(), h.db, h.cfg, ops.ListPagesInput{Workspace: workspace})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	workspaces, err := ops.ListWorkspaces(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "pages", PagesPageData{
		PageData:      h.pageData("Pages", "pages", workspace),
		CurrentPageID: list.CurrentPageID,
		Pages:         list.Pages,
		Workspaces:    workspaces,
	})
}

// HandleAddPage handles POST /pages: append a page and open it.
func (h *Handlers) HandleAddPage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form"))
		return
	}
	workspace := workspaceParam(r)

	out, err := ops.AddPage(r.Context(), h.db, h.cfg, ops.AddPageInput{
		Workspace: workspace,
		Name:      r.PostForm.Get("name"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, pagePath(workspace, out.Page.ID), http.StatusSeeOther)
}

// HandlePage handles GET /pages/{id}: the builder view of one page.
// The path query parameter selects an element for the inspector.
func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	data, err := h.builderData(r, chi.URLParam(r, "id"), r.URL.Query().Get("path"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderer.renderPage(w, r, "page", data)
}

func (h *Handlers) builderData(r *http.Request, id, selected string) (BuilderPageData, error) {
	workspace := workspaceParam(r)
	page, err := ops.GetPage(r.Context(), h.db, h.cfg, ops.PageInput{Workspace: workspace, PageID: id})
	if err != nil {
		return BuilderPageData{}, err
	}
	outline, err := ops.Outline(r.Context(), h.db, h.cfg, ops.OutlineInput{Workspace: workspace, PageID: page.Page.ID})
	if err != nil {
		return BuilderPageData{}, err
	}
	media, err := ops.ListMedia(r.Context(), h.db, h.cfg, workspace)
	if err != nil {
		return BuilderPageData{}, err
	}
	rows, sel := elementRows(outline.Elements, strings.TrimSpace(selected))
	return BuilderPageData{
		PageData: h.pageData(page.Page.Name, "pages", workspace),
		Page:     page.Page,
		Empty:    outline.Empty,
		Blocks:   outline.Blocks,
		Rows:     rows,
		Selected: sel,
		Media:    media.Media,
		Fields:   inspectorFields,
		Actions:  inspectorActions,
		Catalog:  ops.Catalog().Categories,
	}, nil
}

// renderEditor answers an htmx request with the refreshed editor panel, and
// redirects a plain form post back to the builder.
func (h *Handlers) renderEditor(w http.ResponseWriter, r *http.Request, id, selected string) {
	if r.Header.Get("HX-Request") == "true" {
		data, err := h.builderData(r, id, selected)
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		h.renderer.renderBlock(w, http.StatusOK, "page", "editor", data)
		return
	}
	target := pagePath(workspaceParam(r), id)
	if selected != "" {
		target += "&path=" + url.QueryEscape(selected)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// HandleInsertBlock handles POST /pages/{id}/blocks: append a block template
// and select it.
func (h *Handlers) HandleInsertBlock(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form"))
		return
	}
	id := chi.URLParam(r, "id")

	out, err := ops.InsertBlock(r.Context(), h.db, h.cfg, ops.InsertBlockInput{
		Workspace: workspaceParam(r),
		PageID:    id,
		BlockID:   r.PostForm.Get("block_id"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderEditor(w, r, id, out.Path)
}

// HandleEdit handles POST /pages/{id}/edit: apply one inspector operation to
// the element at the posted path.
func (h *Handlers) HandleEdit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form"))
		return
	}
	id := chi.URLParam(r, "id")

	out, err := ops.Edit(r.Context(), h.db, h.cfg, ops.EditInput{
		Workspace: workspaceParam(r),
		PageID:    id,
		Path:      r.PostForm.Get("path"),
		Mode:      ops.EditMode(r.PostForm.Get("mode")),
		Op:        r.PostForm.Get("op"),
		Value:     r.PostForm.Get("value"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderEditor(w, r, out.PageID, out.Selection)
}

// HandleRenamePage handles POST /pages/{id}/rename.
func (h *Handlers) HandleRenamePage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form"))
		return
	}
	workspace := workspaceParam(r)

	out, err := ops.RenamePage(r.Context(), h.db, h.cfg, ops.RenamePageInput{
		Workspace: workspace,
		PageID:    chi.URLParam(r, "id"),
		Name:      r.PostForm.Get("name"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, pagePath(workspace, out.Page.ID), http.StatusSeeOther)
}

// HandleDuplicatePage handles POST /pages/{id}/duplicate: copy a page and open the copy.
func (h *Handlers) HandleDuplicatePage(w http.ResponseWriter, r *http.Request) {
	workspace := workspaceParam(r)

	out, err := ops.DuplicatePage(r.Context(), h.db, h.cfg, ops.PageInput{Workspace: workspace, PageID: chi.URLParam(r, "id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, pagePath(workspace, out.Page.ID), http.StatusSeeOther)
}

// HandleSelectPage handles POST /pages/{id}/select: make a page active.
func (h *Handlers) HandleSelectPage(w http.ResponseWriter, r *http.Request) {
	workspace := workspaceParam(r)

	if _, err := ops.SelectPage(r.Context(), h.db, h.cfg, ops.PageInput{Workspace: workspace, PageID: chi.URLParam(r, "id")}); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, pagesPath(workspace), http.StatusSeeOther)
}

// HandleDeletePage handles POST /pages/{id}/delete.
func (h *Handlers) HandleDeletePage(w http.ResponseWriter, r *http.Request) {
	workspace := workspaceParam(r)

	if _, err := ops.DeletePage(r.Context(), h.db, h.cfg, ops.PageInput{Workspace: workspace, PageID: chi.URLParam(r, "id")}); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, pagesPath(workspace), http.StatusSeeOther)
}

// HandleDeleteWorkspace handles POST /workspaces/{name}/delete.
func (h *Handlers) HandleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if _, err := ops.DeleteWorkspace(r.Context(), h.db, ops.DeleteWorkspaceInput{Workspace: chi.URLParam(r, "name")}); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, pagesPath(ops.DefaultWorkspace), http.StatusSeeOther)
}

// HandlePreview handles GET /pages/{id}/preview: the standalone document,
// served with a policy that allows its inline script.
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	out, err := ops.RenderPage(r.Context(), h.db, h.cfg, ops.RenderInput{
		Workspace: workspaceParam(r),
		PageID:    chi.URLParam(r, "id"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Security-Policy", previewCSP)
	w.Header().Set("X-Frame-Options", "SAMEORIGIN")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(out.HTML))
}

// HandleExport handles GET /pages/{id}/export: download the standalone document.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	out, err := ops.RenderPage(r.Context(), h.db, h.cfg, ops.RenderInput{
		Workspace: workspaceParam(r),
		PageID:    chi.URLParam(r, "id"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	name := ops.SanitizeForFilename(out.PageName) + ".html"
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(out.HTML))
}

// HandleBlocks handles GET /blocks: the block catalog as JSON.
func (h *Handlers) HandleBlocks(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, ops.Catalog())
}
