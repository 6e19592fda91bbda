package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/hpungsan/lapak/internal/canvas"
	"github.com/hpungsan/lapak/internal/db"
	"github.com/hpungsan/lapak/internal/errors"
	"github.com/hpungsan/lapak/internal/inspector"
	"github.com/hpungsan/lapak/internal/ops"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title     string
	Version   string
	Nav       string // active nav item: "pages", "blocks"
	Workspace string
}

// PagesPageData is the template data for the page list.
type PagesPageData struct {
	PageData
	CurrentPageID string
	Pages         []ops.PageItem
	Workspaces    []db.WorkspaceInfo
}

// BuilderPageData is the template data for the builder view of one page.
type BuilderPageData struct {
	PageData
	Page     ops.PageItem
	Empty    bool
	Blocks   []canvas.Block
	Rows     []ElementRow
	Selected *canvas.OutlineNode // nil when nothing is selected
	Media    []ops.MediaItem
	Fields   []InspectorField
	Actions  []InspectorAction
	Catalog  []ops.CatalogCategory
}

// ElementRow is one line of the flattened element tree.
type ElementRow struct {
	Depth int
	Node  canvas.OutlineNode
}

// maxRowDepth caps indentation; deeper rows share the last step.
const maxRowDepth = 8

// elementRows flattens the outline in document order and marks the element
// at selected. It returns the selected element, or nil when the path does not
// name one.
func elementRows(nodes []canvas.OutlineNode, selected string) ([]ElementRow, *canvas.OutlineNode) {
	var rows []ElementRow
	var sel *canvas.OutlineNode
	var walk func(list []canvas.OutlineNode, depth int)
	walk = func(list []canvas.OutlineNode, depth int) {
		for _, n := range list {
			n.Selected = selected != "" && n.Path == selected
			if n.Selected {
				found := n
				sel = &found
			}
			rows = append(rows, ElementRow{Depth: min(depth, maxRowDepth), Node: n})
			walk(n.Children, depth+1)
		}
	}
	walk(nodes, 0)
	return rows, sel
}

// InspectorField is a value-taking inspector operation and its input control.
type InspectorField struct {
	Op          inspector.Op
	Label       string
	Kind        string // input type, "textarea" or "select"
	Placeholder string
	Options     []string
}

// InspectorAction is an inspector operation without a value.
type InspectorAction struct {
	Op    inspector.Op
	Label string
}

var inspectorFields = []InspectorField{
	{Op: inspector.OpText, Label: "Text", Kind: "text"},
	{Op: inspector.OpLink, Label: "Link", Kind: "text", Placeholder: "https://"},
	{Op: inspector.OpColor, Label: "Text color", Kind: "color"},
	{Op: inspector.OpBackground, Label: "Background", Kind: "color"},
	{Op: inspector.OpPadding, Label: "Padding (px)", Kind: "number"},
	{Op: inspector.OpMargin, Label: "Margin (px)", Kind: "number"},
	{Op: inspector.OpAlign, Label: "Align", Kind: "select", Options: inspector.TextAlign},
	{Op: inspector.OpMarkdown, Label: "Rich text", Kind: "textarea", Placeholder: "**Markdown**"},
}

var inspectorActions = []InspectorAction{
	{Op: inspector.OpMoveUp, Label: "Move up"},
	{Op: inspector.OpMoveDown, Label: "Move down"},
	{Op: inspector.OpDuplicate, Label: "Duplicate"},
	{Op: inspector.OpDraggable, Label: "Make draggable"},
	{Op: inspector.OpDelete, Label: "Delete"},
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	logger    *zap.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, logger *zap.Logger) *Renderer {
	funcMap := template.FuncMap{
		"add":        func(a, b int) int { return a + b },
		"formatTime": formatTime,
		"ago":        func(unix int64) string { return humanize.Time(time.Unix(unix, 0)) },
		"bytes":      func(n int) string { return humanize.Bytes(uint64(n)) },
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"pages": "pages.html",
		"page":  "page.html",
		"error": "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		logger:    logger,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For HTMX requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	block := "layout"
	if req != nil && req.Header.Get("HX-Request") == "true" {
		block = "content"
	}
	r.renderBlock(w, status, name, block, data)
}

// renderBlock renders a specific named block from a page template.
// Used for htmx partial swaps that target a sub-section of the page.
func (r *Renderer) renderBlock(w http.ResponseWriter, status int, page, block string, data any) {
	t, ok := r.templates[page]
	if !ok {
		r.logger.Error("template not found", zap.String("template", page))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		r.logger.Error("template execution failed", zap.String("template", page), zap.String("block", block), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var lErr *errors.LapakError
	if !stderrors.As(err, &lErr) {
		lErr = errors.NewInternal(err)
	}

	status := lErr.Status
	message := lErr.Message
	if lErr.Code == errors.ErrInternal {
		r.logger.Error("request failed", zap.String("path", req.URL.Path), zap.Error(err))
		message = "internal server error"
	}

	// HTMX request: return HTML fragment
	if req.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	// JSON request
	if strings.Contains(req.Header.Get("Accept"), "application/json") {
		renderJSON(w, status, map[string]any{
			"error": map[string]any{
				"code":    string(lErr.Code),
				"message": message,
				"status":  status,
			},
		})
		return
	}

	// Full error page
	r.renderPageStatus(w, req, status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", status),
			Version: r.version,
		},
		StatusCode: status,
		Message:    message,
	})
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}
