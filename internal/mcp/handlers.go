package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/lapak/internal/config"
	"github.com/hpungsan/lapak/internal/errors"
	"github.com/hpungsan/lapak/internal/ops"
	"github.com/hpungsan/lapak/internal/workspace"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// Request types for each tool

// WorkspaceRequest names a workspace.
type WorkspaceRequest struct {
	Workspace string `json:"workspace,omitempty"`
}

// PageRequest addresses a page.
type PageRequest struct {
	Workspace string `json:"workspace,omitempty"`
	PageID    string `json:"page_id,omitempty"`
}

// PageAddRequest represents the arguments for page_add.
type PageAddRequest struct {
	Workspace string `json:"workspace,omitempty"`
	Name      string `json:"name,omitempty"`
}

// PageRenameRequest represents the arguments for page_rename.
type PageRenameRequest struct {
	Workspace string `json:"workspace,omitempty"`
	PageID    string `json:"page_id,omitempty"`
	Name      string `json:"name"`
}

// OutlineRequest represents the arguments for page_outline.
type OutlineRequest struct {
	Workspace string `json:"workspace,omitempty"`
	PageID    string `json:"page_id,omitempty"`
	MaxDepth  int    `json:"max_depth,omitempty"`
}

// ExportRequest represents the arguments for page_export.
type ExportRequest struct {
	Workspace string `json:"workspace,omitempty"`
	PageID    string `json:"page_id,omitempty"`
	Path      string `json:"path,omitempty"`
}

// BlockInsertRequest represents the arguments for block_insert.
type BlockInsertRequest struct {
	Workspace string `json:"workspace,omitempty"`
	PageID    string `json:"page_id,omitempty"`
	BlockID   string `json:"block_id"`
}

// EditRequest represents the arguments for element_edit.
type EditRequest struct {
	Workspace string `json:"workspace,omitempty"`
	PageID    string `json:"page_id,omitempty"`
	Path      string `json:"path"`
	Mode      string `json:"mode,omitempty"`
	Op        string `json:"op"`
	Value     string `json:"value,omitempty"`
}

// BackupRequest represents the arguments for workspace_backup.
type BackupRequest struct {
	Workspace string `json:"workspace,omitempty"`
	Path      string `json:"path,omitempty"`
}

// RestoreRequest represents the arguments for workspace_restore.
type RestoreRequest struct {
	Path      string `json:"path"`
	Workspace string `json:"workspace,omitempty"`
}

// SettingsUpdateRequest represents the arguments for settings_update.
type SettingsUpdateRequest struct {
	Workspace string                  `json:"workspace,omitempty"`
	Settings  workspace.SettingsPatch `json:"settings"`
}

// MediaAddRequest represents the arguments for media_add.
type MediaAddRequest struct {
	Workspace string `json:"workspace,omitempty"`
	Path      string `json:"path,omitempty"`
	DataURI   string `json:"data_uri,omitempty"`
	Name      string `json:"name,omitempty"`
	Use       string `json:"use,omitempty"`
}

// MediaDeleteRequest represents the arguments for media_delete.
type MediaDeleteRequest struct {
	Workspace string `json:"workspace,omitempty"`
	ID        string `json:"id"`
}

// CheckoutRequest represents the arguments for checkout_preview.
type CheckoutRequest struct {
	Workspace string            `json:"workspace,omitempty"`
	PageID    string            `json:"page_id,omitempty"`
	Path      string            `json:"path"`
	Qty       int64             `json:"qty,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Handler implementations

// HandlePageList handles the page_list tool call.
func (h *Handlers) HandlePageList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[WorkspaceRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.ListPages(ctx, h.db, h.cfg, ops.ListPagesInput{Workspace: input.Workspace}))
}

// HandlePageGet handles the page_get tool call.
func (h *Handlers) HandlePageGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PageRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.GetPage(ctx, h.db, h.cfg, ops.PageInput(input)))
}

// HandlePageAdd handles the page_add tool call.
func (h *Handlers) HandlePageAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PageAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.AddPage(ctx, h.db, h.cfg, ops.AddPageInput(input)))
}

// HandlePageDuplicate handles the page_duplicate tool call.
func (h *Handlers) HandlePageDuplicate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PageRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.DuplicatePage(ctx, h.db, h.cfg, ops.PageInput(input)))
}

// HandlePageSelect handles the page_select tool call.
func (h *Handlers) HandlePageSelect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PageRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.SelectPage(ctx, h.db, h.cfg, ops.PageInput(input)))
}

// HandlePageRename handles the page_rename tool call.
func (h *Handlers) HandlePageRename(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PageRenameRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.RenamePage(ctx, h.db, h.cfg, ops.RenamePageInput(input)))
}

// HandlePageDelete handles the page_delete tool call.
func (h *Handlers) HandlePageDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PageRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.DeletePage(ctx, h.db, h.cfg, ops.PageInput(input)))
}

// HandlePageOutline handles the page_outline tool call.
func (h *Handlers) HandlePageOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[OutlineRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.Outline(ctx, h.db, h.cfg, ops.OutlineInput(input)))
}

// HandlePageRender handles the page_render tool call.
func (h *Handlers) HandlePageRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PageRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.RenderPage(ctx, h.db, h.cfg, ops.RenderInput(input)))
}

// HandlePageExport handles the page_export tool call.
func (h *Handlers) HandlePageExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.Export(ctx, h.db, h.cfg, ops.ExportInput(input)))
}

// HandleBlockCatalog handles the block_catalog tool call.
func (h *Handlers) HandleBlockCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := decode[struct{}](req); err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return successResult(ops.Catalog())
}

// HandleBlockInsert handles the block_insert tool call.
func (h *Handlers) HandleBlockInsert(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BlockInsertRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.InsertBlock(ctx, h.db, h.cfg, ops.InsertBlockInput(input)))
}

// HandleElementEdit handles the element_edit tool call.
func (h *Handlers) HandleElementEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EditRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.Edit(ctx, h.db, h.cfg, ops.EditInput{
		Workspace: input.Workspace,
		PageID:    input.PageID,
		Path:      input.Path,
		Mode:      ops.EditMode(input.Mode),
		Op:        input.Op,
		Value:     input.Value,
	}))
}

// HandleWorkspaceList handles the workspace_list tool call.
func (h *Handlers) HandleWorkspaceList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := decode[struct{}](req); err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	items, err := ops.ListWorkspaces(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"workspaces": items})
}

// HandleWorkspaceBackup handles the workspace_backup tool call.
func (h *Handlers) HandleWorkspaceBackup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BackupRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.Backup(ctx, h.db, h.cfg, ops.BackupInput(input)))
}

// HandleWorkspaceRestore handles the workspace_restore tool call.
func (h *Handlers) HandleWorkspaceRestore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RestoreRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.Restore(ctx, h.db, h.cfg, ops.RestoreInput(input)))
}

// HandleWorkspaceDelete handles the workspace_delete tool call.
func (h *Handlers) HandleWorkspaceDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[WorkspaceRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.DeleteWorkspace(ctx, h.db, ops.DeleteWorkspaceInput{Workspace: input.Workspace}))
}

// HandleSettingsGet handles the settings_get tool call.
func (h *Handlers) HandleSettingsGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[WorkspaceRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.GetSettings(ctx, h.db, h.cfg, input.Workspace))
}

// HandleSettingsUpdate handles the settings_update tool call.
func (h *Handlers) HandleSettingsUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SettingsUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.UpdateSettings(ctx, h.db, h.cfg, ops.UpdateSettingsInput{
		Workspace: input.Workspace,
		Patch:     input.Settings,
	}))
}

// HandleMediaAdd handles the media_add tool call.
func (h *Handlers) HandleMediaAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MediaAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.AddMedia(ctx, h.db, h.cfg, ops.AddMediaInput(input)))
}

// HandleMediaList handles the media_list tool call.
func (h *Handlers) HandleMediaList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[WorkspaceRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.ListMedia(ctx, h.db, h.cfg, input.Workspace))
}

// HandleMediaDelete handles the media_delete tool call.
func (h *Handlers) HandleMediaDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MediaDeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.DeleteMedia(ctx, h.db, h.cfg, ops.DeleteMediaInput(input)))
}

// HandleCheckoutPreview handles the checkout_preview tool call.
func (h *Handlers) HandleCheckoutPreview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CheckoutRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.PreviewCheckout(ctx, h.db, h.cfg, ops.CheckoutInput(input)))
}

// Result helpers

// result turns an ops return pair into a tool result.
func result[T any](data T, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(data)
}

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var lapakErr *errors.LapakError
	if stderrors.As(err, &lapakErr) && lapakErr.Code != errors.ErrInternal {
		msg := lapakErr.Message
		// Keep context added by wrapping, e.g. "items[2]: page not found: x".
		if prefix := strings.TrimSuffix(err.Error(), lapakErr.Error()); prefix != err.Error() {
			msg = prefix + msg
		}
		errorObj := map[string]any{
			"code":    lapakErr.Code,
			"message": msg,
			"status":  lapakErr.Status,
		}
		if lapakErr.Details != nil {
			errorObj["details"] = lapakErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
