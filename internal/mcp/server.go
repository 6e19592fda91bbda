package mcp

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hpungsan/lapak/internal/config"
	"github.com/hpungsan/lapak/internal/logging"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"page", "block", "element", "workspace", "settings", "media", "checkout"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"page_list": {
		def:     pageListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePageList },
	},
	"page_get": {
		def:     pageGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePageGet },
	},
	"page_add": {
		def:     pageAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePageAdd },
	},
	"page_duplicate": {
		def:     pageDuplicateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePageDuplicate },
	},
	"page_select": {
		def:     pageSelectToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePageSelect },
	},
	"page_rename": {
		def:     pageRenameToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePageRename },
	},
	"page_delete": {
		def:     pageDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePageDelete },
	},
	"page_outline": {
		def:     pageOutlineToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePageOutline },
	},
	"page_render": {
		def:     pageRenderToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePageRender },
	},
	"page_export": {
		def:     pageExportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePageExport },
	},
	"block_catalog": {
		def:     blockCatalogToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBlockCatalog },
	},
	"block_insert": {
		def:     blockInsertToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBlockInsert },
	},
	"element_edit": {
		def:     elementEditToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleElementEdit },
	},
	"workspace_list": {
		def:     workspaceListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleWorkspaceList },
	},
	"workspace_backup": {
		def:     workspaceBackupToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleWorkspaceBackup },
	},
	"workspace_restore": {
		def:     workspaceRestoreToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleWorkspaceRestore },
	},
	"workspace_delete": {
		def:     workspaceDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleWorkspaceDelete },
	},
	"settings_get": {
		def:     settingsGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSettingsGet },
	},
	"settings_update": {
		def:     settingsUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSettingsUpdate },
	},
	"media_add": {
		def:     mediaAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMediaAdd },
	},
	"media_list": {
		def:     mediaListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMediaList },
	},
	"media_delete": {
		def:     mediaDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMediaDelete },
	},
	"checkout_preview": {
		def:     checkoutPreviewToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCheckoutPreview },
	},
}

// AllToolNames returns all valid tool names, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "page_export" → "page").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	sort.Strings(tools)
	return tools
}

// NewServer creates a new MCP server with Lapak tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration. A nil logger disables call logging.
func NewServer(db *sql.DB, cfg *config.Config, version string, logger *zap.Logger) *server.MCPServer {
	logger = logging.OrNop(logger)
	s := server.NewMCPServer(
		"lapak",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(logCalls(logger)),
	)

	h := NewHandlers(db, cfg)

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			logger.Debug("tool disabled", zap.String("tool", name))
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// logCalls records each tool call's outcome and duration.
func logCalls(logger *zap.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			res, err := next(ctx, req)
			fields := []zap.Field{
				zap.String("tool", req.Params.Name),
				zap.Duration("duration", time.Since(start)),
			}
			switch {
			case err != nil:
				logger.Error("tool call failed", append(fields, zap.Error(err))...)
			case res != nil && res.IsError:
				logger.Info("tool call rejected", fields...)
			default:
				logger.Debug("tool call", fields...)
			}
			return res, err
		}
	}
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, version string, logger *zap.Logger) error {
	s := NewServer(db, cfg, version, logger)
	return server.ServeStdio(s)
}
