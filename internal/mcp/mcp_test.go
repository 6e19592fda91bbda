package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hpungsan/lapak/internal/config"
	"github.com/hpungsan/lapak/internal/db"
	"github.com/hpungsan/lapak/internal/errors"
)

// testSetup creates a temporary database and config for testing.
func testSetup(t *testing.T) (*sql.DB, *config.Config, string) {
	t.Helper()

	tmpDir := t.TempDir()
	database, err := db.Init(filepath.Join(tmpDir, ".lapak"))
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true // Allow temp dirs in tests

	return database, cfg, tmpDir
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

type handlerFunc func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// call invokes a handler and fails the test on a transport-level error.
func call(t *testing.T, fn handlerFunc, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := fn(context.Background(), makeRequest(args))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return result
}

func TestHandlePages(t *testing.T) {
	database, cfg, _ := testSetup(t)
	h := NewHandlers(database, cfg)

	out := parseOutput(t, call(t, h.HandlePageList, map[string]any{"workspace": "toko"}))
	if out["current_page_id"] != "home" {
		t.Fatalf("current_page_id = %v, want home", out["current_page_id"])
	}

	added := parseOutput(t, call(t, h.HandlePageAdd, map[string]any{"workspace": "toko", "name": "Promo"}))
	page := added["page"].(map[string]any)
	id := page["id"].(string)
	if page["name"] != "Promo" || page["current"] != true {
		t.Errorf("added page = %v", page)
	}

	renamed := parseOutput(t, call(t, h.HandlePageRename, map[string]any{"workspace": "toko", "page_id": id, "name": "Diskon"}))
	if renamed["page"].(map[string]any)["name"] != "Diskon" {
		t.Errorf("rename = %v", renamed)
	}

	dup := parseOutput(t, call(t, h.HandlePageDuplicate, map[string]any{"workspace": "toko", "page_id": id}))
	if dup["page"].(map[string]any)["name"] != "Diskon (Copy)" {
		t.Errorf("duplicate = %v", dup)
	}

	parseOutput(t, call(t, h.HandlePageSelect, map[string]any{"workspace": "toko", "page_id": "home"}))
	deleted := parseOutput(t, call(t, h.HandlePageDelete, map[string]any{"workspace": "toko", "page_id": id}))
	if deleted["current_page_id"] != "home" {
		t.Errorf("delete = %v", deleted)
	}

	list := parseOutput(t, call(t, h.HandlePageList, map[string]any{"workspace": "toko"}))
	if n := len(list["pages"].([]any)); n != 2 {
		t.Errorf("pages = %d, want 2", n)
	}

	ws := parseOutput(t, call(t, h.HandleWorkspaceList, nil))
	if n := len(ws["workspaces"].([]any)); n != 1 {
		t.Errorf("workspaces = %d, want 1", n)
	}
}

func TestHandleWorkspaceDelete(t *testing.T) {
	database, cfg, _ := testSetup(t)
	h := NewHandlers(database, cfg)

	parseOutput(t, call(t, h.HandlePageAdd, map[string]any{"workspace": "toko", "name": "Promo"}))

	out := parseOutput(t, call(t, h.HandleWorkspaceDelete, map[string]any{"workspace": "toko"}))
	if out["deleted"] != "toko" {
		t.Errorf("deleted = %v, want toko", out["deleted"])
	}
	ws := parseOutput(t, call(t, h.HandleWorkspaceList, nil))
	if n := len(ws["workspaces"].([]any)); n != 0 {
		t.Errorf("workspaces = %d, want 0", n)
	}

	assertErrorCode(t, call(t, h.HandleWorkspaceDelete, map[string]any{"workspace": "toko"}), "NOT_FOUND")
	assertErrorCode(t, call(t, h.HandleWorkspaceDelete, nil), "INVALID_REQUEST")
}

func TestHandlePages_Errors(t *testing.T) {
	database, cfg, _ := testSetup(t)
	h := NewHandlers(database, cfg)

	tests := []struct {
		name      string
		fn        handlerFunc
		args      map[string]any
		errorCode string
	}{
		{"select without page_id", h.HandlePageSelect, map[string]any{}, "INVALID_REQUEST"},
		{"select unknown page", h.HandlePageSelect, map[string]any{"page_id": "nope"}, "NOT_FOUND"},
		{"delete only page", h.HandlePageDelete, map[string]any{"page_id": "home"}, "INVALID_REQUEST"},
		{"rename to blank", h.HandlePageRename, map[string]any{"name": " "}, "INVALID_REQUEST"},
		{"unknown argument", h.HandlePageAdd, map[string]any{"title": "Promo"}, "INVALID_REQUEST"},
		{"wrong argument type", h.HandlePageOutline, map[string]any{"max_depth": "deep"}, "INVALID_REQUEST"},
		{"render empty page", h.HandlePageRender, map[string]any{}, "NO_CONTENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := call(t, tt.fn, tt.args)
			if !result.IsError {
				t.Fatalf("expected error result, got %s", extractErrorMessage(result))
			}
			assertErrorCode(t, result, tt.errorCode)
		})
	}
}

func TestHandleBuildAndCheckout(t *testing.T) {
	database, cfg, _ := testSetup(t)
	h := NewHandlers(database, cfg)

	catalog := parseOutput(t, call(t, h.HandleBlockCatalog, nil))
	if n := len(catalog["categories"].([]any)); n != 4 {
		t.Fatalf("categories = %d, want 4", n)
	}

	ignored := parseOutput(t, call(t, h.HandleBlockInsert, map[string]any{"block_id": "carousel"}))
	if ignored["applied"] != false {
		t.Errorf("unknown block applied: %v", ignored)
	}
	inserted := parseOutput(t, call(t, h.HandleBlockInsert, map[string]any{"block_id": "product"}))
	if inserted["applied"] != true || inserted["path"] != "0" {
		t.Fatalf("insert = %v", inserted)
	}

	outline := parseOutput(t, call(t, h.HandlePageOutline, map[string]any{}))
	titlePath := findOutlinePath(outline["elements"].([]any), "role", "product")
	buyPath := findOutlinePath(outline["elements"].([]any), "action", "buy-wa")
	if titlePath == "" || buyPath == "" {
		t.Fatalf("outline paths missing: title=%q buy=%q", titlePath, buyPath)
	}

	edited := parseOutput(t, call(t, h.HandleElementEdit, map[string]any{"path": titlePath, "op": "text", "value": "Kopi Gayo"}))
	if edited["applied"] != true {
		t.Fatalf("edit = %v", edited)
	}

	parseOutput(t, call(t, h.HandleSettingsUpdate, map[string]any{
		"settings": map[string]any{"wa_number": "+62 812-3456-7890", "brand_name": "Toko Kopi"},
	}))

	preview := parseOutput(t, call(t, h.HandleCheckoutPreview, map[string]any{"path": buyPath, "qty": 2}))
	if preview["total_text"] != "Rp300.000" {
		t.Errorf("total_text = %v, want Rp300.000", preview["total_text"])
	}
	if preview["message"] != "Halo, saya ingin beli Kopi Gayo (2x) total Rp300.000." {
		t.Errorf("message = %v", preview["message"])
	}
	if link, _ := preview["link"].(string); !strings.HasPrefix(link, "https://wa.me/6281234567890?text=") {
		t.Errorf("link = %v", preview["link"])
	}

	rendered := parseOutput(t, call(t, h.HandlePageRender, map[string]any{}))
	if html, _ := rendered["html"].(string); !strings.Contains(html, "Kopi Gayo") {
		t.Error("rendered page missing edited title")
	}
}

func TestHandleElementEdit_Errors(t *testing.T) {
	database, cfg, _ := testSetup(t)
	h := NewHandlers(database, cfg)
	parseOutput(t, call(t, h.HandleBlockInsert, map[string]any{"block_id": "hero"}))

	for _, tc := range []struct {
		args map[string]any
		code string
	}{
		{map[string]any{"path": "0", "op": "spin"}, "INVALID_REQUEST"},
		{map[string]any{"path": "0", "op": "color", "value": "blue"}, "INVALID_REQUEST"},
		{map[string]any{"path": "0", "op": "image", "value": "media_x"}, "NOT_FOUND"},
		{map[string]any{"path": "0.", "op": "delete"}, "INVALID_REQUEST"},
	} {
		result := call(t, h.HandleElementEdit, tc.args)
		if !result.IsError {
			t.Errorf("%v: expected error", tc.args)
			continue
		}
		assertErrorCode(t, result, tc.code)
	}

	miss := parseOutput(t, call(t, h.HandleElementEdit, map[string]any{"path": "5", "op": "delete"}))
	if miss["applied"] != false {
		t.Errorf("edit of a missing path applied: %v", miss)
	}
}

func TestHandleExportBackupRestore(t *testing.T) {
	database, cfg, tmpDir := testSetup(t)
	h := NewHandlers(database, cfg)

	parseOutput(t, call(t, h.HandleBlockInsert, map[string]any{"workspace": "toko", "block_id": "hero"}))

	exportPath := filepath.Join(tmpDir, "toko.html")
	exported := parseOutput(t, call(t, h.HandlePageExport, map[string]any{"workspace": "toko", "path": exportPath}))
	if exported["path"] != exportPath {
		t.Errorf("export path = %v, want %s", exported["path"], exportPath)
	}
	if _, err := os.Stat(exportPath); err != nil {
		t.Fatalf("export file: %v", err)
	}

	backupPath := filepath.Join(tmpDir, "toko.json")
	parseOutput(t, call(t, h.HandleWorkspaceBackup, map[string]any{"workspace": "toko", "path": backupPath}))

	restored := parseOutput(t, call(t, h.HandleWorkspaceRestore, map[string]any{"path": backupPath, "workspace": "salinan"}))
	if restored["workspace"] != "salinan" {
		t.Errorf("restore = %v", restored)
	}

	page := parseOutput(t, call(t, h.HandlePageGet, map[string]any{"workspace": "salinan"}))
	if html, _ := page["html"].(string); !strings.Contains(html, `data-block-id="hero"`) {
		t.Error("restored workspace lost its block")
	}

	bad := filepath.Join(tmpDir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"pages":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	result := call(t, h.HandleWorkspaceRestore, map[string]any{"path": bad, "workspace": "salinan"})
	assertErrorCode(t, result, "IMPORT_REJECTED")

	result = call(t, h.HandleWorkspaceRestore, map[string]any{"path": filepath.Join(tmpDir, "missing.json")})
	assertErrorCode(t, result, "FILE_NOT_FOUND")
}

func TestHandleSettingsAndMedia(t *testing.T) {
	database, cfg, _ := testSetup(t)
	h := NewHandlers(database, cfg)

	got := parseOutput(t, call(t, h.HandleSettingsGet, map[string]any{}))
	settings := got["settings"].(map[string]any)
	if settings["theme"] != "dark" || settings["lang"] != "id" {
		t.Errorf("default settings = %v", settings)
	}

	assertErrorCode(t, call(t, h.HandleSettingsUpdate, map[string]any{"settings": map[string]any{"theme": "neon"}}), "INVALID_REQUEST")
	assertErrorCode(t, call(t, h.HandleSettingsUpdate, map[string]any{"settings": map[string]any{"colour": "red"}}), "INVALID_REQUEST")

	added := parseOutput(t, call(t, h.HandleMediaAdd, map[string]any{
		"data_uri": "data:image/png;base64,iVBORw0KGgo=",
		"name":     "qris",
		"use":      "qris_image",
	}))
	id := added["media"].(map[string]any)["id"].(string)

	got = parseOutput(t, call(t, h.HandleSettingsGet, map[string]any{}))
	if got["settings"].(map[string]any)["qris_image"] != id {
		t.Errorf("qris_image not assigned: %v", got)
	}

	list := parseOutput(t, call(t, h.HandleMediaList, map[string]any{}))
	if n := len(list["media"].([]any)); n != 1 {
		t.Errorf("media = %d, want 1", n)
	}

	parseOutput(t, call(t, h.HandleMediaDelete, map[string]any{"id": id}))
	assertErrorCode(t, call(t, h.HandleMediaDelete, map[string]any{"id": id}), "NOT_FOUND")
}

func TestServerRegistration(t *testing.T) {
	database, cfg, _ := testSetup(t)

	s := NewServer(database, cfg, "test", nil)
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{
		"page_list", "page_get", "page_add", "page_duplicate", "page_select",
		"page_rename", "page_delete", "page_outline", "page_render", "page_export",
		"block_catalog", "block_insert", "element_edit",
		"workspace_list", "workspace_backup", "workspace_restore", "workspace_delete",
		"settings_get", "settings_update",
		"media_add", "media_list", "media_delete",
		"checkout_preview",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}
	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	database, cfg, _ := testSetup(t)

	cfg.DisabledTools = []string{"page_delete", "workspace_restore", "workspace_restore"}
	tools := NewServer(database, cfg, "test", nil).ListTools()

	if want := len(toolRegistry) - 2; len(tools) != want {
		t.Errorf("registered tool count = %d, want %d", len(tools), want)
	}
	for _, name := range []string{"page_delete", "workspace_restore"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
	if _, ok := tools["page_export"]; !ok {
		t.Error("page_export should be registered")
	}
}

func TestServerRegistration_WithDisabledTypes(t *testing.T) {
	database, cfg, _ := testSetup(t)

	cfg.DisabledTypes = []string{"media"}
	tools := NewServer(database, cfg, "test", nil).ListTools()

	for name := range tools {
		if strings.HasPrefix(name, "media_") {
			t.Errorf("tool %q of disabled type should not be registered", name)
		}
	}
	if want := len(toolRegistry) - 3; len(tools) != want {
		t.Errorf("registered tool count = %d, want %d", len(tools), want)
	}
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	database, cfg, _ := testSetup(t)

	cfg.DisabledTools = AllToolNames()
	if tools := NewServer(database, cfg, "test", nil).ListTools(); len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0 (all disabled)", len(tools))
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{"all valid", []string{"page_delete", "media_add"}, 0},
		{"one unknown", []string{"page_delete", "fake_tool"}, 1},
		{"all unknown", []string{"foo", "bar", "baz"}, 3},
		{"empty list", []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unknown := ValidateDisabledTools(tt.input)
			if len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestValidateDisabledTypes(t *testing.T) {
	if unknown := ValidateDisabledTypes([]string{"page", "checkout"}); len(unknown) != 0 {
		t.Errorf("unexpected unknown types: %v", unknown)
	}
	if unknown := ValidateDisabledTypes([]string{"order"}); len(unknown) != 1 {
		t.Errorf("order should be unknown, got %v", unknown)
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != len(toolRegistry) {
		t.Errorf("AllToolNames() returned %d names, want %d", len(names), len(toolRegistry))
	}
	if unknown := ValidateDisabledTools(names); len(unknown) != 0 {
		t.Errorf("AllToolNames() returned invalid names: %v", unknown)
	}
	// Every tool belongs to a known type.
	for _, name := range names {
		if unknown := ValidateDisabledTypes([]string{GetTypeForTool(name)}); len(unknown) != 0 {
			t.Errorf("tool %q has unknown type %q", name, GetTypeForTool(name))
		}
	}
}

func TestExpandTypesToTools(t *testing.T) {
	got := ExpandTypesToTools([]string{"workspace"})
	want := []string{"workspace_backup", "workspace_delete", "workspace_list", "workspace_restore"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ExpandTypesToTools(workspace) = %v, want %v", got, want)
	}
	if got := ExpandTypesToTools(nil); got != nil {
		t.Errorf("ExpandTypesToTools(nil) = %v, want nil", got)
	}
}

func TestLogCalls(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mw := logCalls(zap.New(core))

	ok := mw(func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return successResult(map[string]any{})
	})
	rejected := mw(func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return errorResult(errors.NewInvalidRequest("nope")), nil
	})

	req := makeRequest(nil)
	req.Params.Name = "page_list"
	if _, err := ok(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if _, err := rejected(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("log entries = %d, want 2", len(entries))
	}
	if entries[0].Message != "tool call" || entries[1].Message != "tool call rejected" {
		t.Errorf("messages = %q, %q", entries[0].Message, entries[1].Message)
	}
	if entries[1].ContextMap()["tool"] != "page_list" {
		t.Errorf("tool field = %v", entries[1].ContextMap()["tool"])
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
	if strings.Contains(errObj["message"].(string), "secret.db") {
		t.Fatal("INTERNAL message leaked the cause")
	}
}

func TestErrorResult_WrappedErrorPreservesContext(t *testing.T) {
	wrapped := fmt.Errorf("pages[2]: %w", errors.NewNotFound("page", "x"))

	errObj := errorObject(t, errorResult(wrapped))
	if errObj["code"] != string(errors.ErrNotFound) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrNotFound)
	}
	if msg := errObj["message"].(string); !strings.Contains(msg, "pages[2]") {
		t.Errorf("message should contain wrapper context 'pages[2]', got: %s", msg)
	}
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	errObj := errorObject(t, errorResult(errors.NewNotFound("media", "abc")))
	if errObj["code"] != string(errors.ErrNotFound) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrNotFound)
	}
	if _, ok := errObj["details"]; !ok {
		t.Fatal("expected non-INTERNAL errors to include details when present")
	}
}

// Helper functions

// findOutlinePath returns the path of the first outline element whose key
// equals value.
func findOutlinePath(nodes []any, key, value string) string {
	for _, raw := range nodes {
		n := raw.(map[string]any)
		if n[key] == value {
			return n["path"].(string)
		}
		if children, ok := n["children"].([]any); ok {
			if p := findOutlinePath(children, key, value); p != "" {
				return p
			}
		}
	}
	return ""
}

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func errorObject(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	return payload["error"].(map[string]any)
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if !result.IsError {
		t.Errorf("expected error %s, got success: %s", expectedCode, extractErrorMessage(result))
		return
	}
	if len(result.Content) == 0 {
		t.Errorf("no content in error result")
		return
	}
	if code, _ := errorObject(t, result)["code"].(string); code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}
