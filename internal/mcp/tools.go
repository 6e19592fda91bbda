package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/lapak/internal/inspector"
	"github.com/hpungsan/lapak/internal/ops"
)

func workspaceArg() mcp.ToolOption {
	return mcp.WithString("workspace", mcp.Description("Workspace name (default: \"default\")"))
}

func pageIDArg() mcp.ToolOption {
	return mcp.WithString("page_id", mcp.Description("Page id (default: the active page)"))
}

func opNames() []string {
	names := make([]string, len(inspector.Ops))
	for i, op := range inspector.Ops {
		names[i] = string(op)
	}
	return names
}

var pageListToolDef = mcp.NewTool("page_list",
	mcp.WithDescription("List the pages of a workspace in order, with the active page marked."),
	workspaceArg(),
	mcp.WithReadOnlyHintAnnotation(true),
)

var pageGetToolDef = mcp.NewTool("page_get",
	mcp.WithDescription("Return a page's stored markup."),
	workspaceArg(),
	pageIDArg(),
	mcp.WithReadOnlyHintAnnotation(true),
)

var pageAddToolDef = mcp.NewTool("page_add",
	mcp.WithDescription("Append an empty page and make it active."),
	workspaceArg(),
	mcp.WithString("name", mcp.Description("Page name (default: \"New Page\")")),
)

var pageDuplicateToolDef = mcp.NewTool("page_duplicate",
	mcp.WithDescription("Copy a page, name and content, right after itself and make the copy active."),
	workspaceArg(),
	pageIDArg(),
)

var pageSelectToolDef = mcp.NewTool("page_select",
	mcp.WithDescription("Make a page the active page."),
	workspaceArg(),
	mcp.WithString("page_id", mcp.Description("Page id"), mcp.Required()),
)

var pageRenameToolDef = mcp.NewTool("page_rename",
	mcp.WithDescription("Rename a page."),
	workspaceArg(),
	pageIDArg(),
	mcp.WithString("name", mcp.Description("New name"), mcp.Required()),
)

var pageDeleteToolDef = mcp.NewTool("page_delete",
	mcp.WithDescription("Delete a page. The only page of a workspace cannot be deleted."),
	workspaceArg(),
	pageIDArg(),
	mcp.WithDestructiveHintAnnotation(true),
)

var pageOutlineToolDef = mcp.NewTool("page_outline",
	mcp.WithDescription("Return a page's blocks and element tree. Element paths are the addresses element_edit and checkout_preview accept."),
	workspaceArg(),
	pageIDArg(),
	mcp.WithNumber("max_depth", mcp.Description("Nesting levels below the top level to include (0: unlimited)"), mcp.Min(0)),
	mcp.WithReadOnlyHintAnnotation(true),
)

var pageRenderToolDef = mcp.NewTool("page_render",
	mcp.WithDescription("Render a page as the standalone HTML document export would write, without writing a file."),
	workspaceArg(),
	pageIDArg(),
	mcp.WithReadOnlyHintAnnotation(true),
)

var pageExportToolDef = mcp.NewTool("page_export",
	mcp.WithDescription("Write a page as a standalone HTML document with the checkout script embedded."),
	workspaceArg(),
	pageIDArg(),
	mcp.WithString("path", mcp.Description("Output .html file (default: ~/.lapak/exports/<workspace>-<page>-<timestamp>.html)")),
)

var blockCatalogToolDef = mcp.NewTool("block_catalog",
	mcp.WithDescription("List the block templates by category."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var blockInsertToolDef = mcp.NewTool("block_insert",
	mcp.WithDescription("Append a block template to the end of a page. Unknown block ids are ignored (applied=false)."),
	workspaceArg(),
	pageIDArg(),
	mcp.WithString("block_id", mcp.Description("Template id from block_catalog"), mcp.Required()),
)

var elementEditToolDef = mcp.NewTool("element_edit",
	mcp.WithDescription("Select an element by path and apply one edit to it. A path that selects nothing reports applied=false."),
	workspaceArg(),
	pageIDArg(),
	mcp.WithString("path", mcp.Description("Dotted element path from page_outline, e.g. \"1.0.2\""), mcp.Required()),
	mcp.WithString("mode",
		mcp.Description("click selects the enclosing block, focus selects the element itself (default: focus)"),
		mcp.Enum(string(ops.EditModeClick), string(ops.EditModeFocus)),
	),
	mcp.WithString("op", mcp.Description("Edit operation"), mcp.Required(), mcp.Enum(opNames()...)),
	mcp.WithString("value", mcp.Description("Operation argument: text, URL, hex color, pixels, alignment, markdown, or a media id for image")),
)

var workspaceListToolDef = mcp.NewTool("workspace_list",
	mcp.WithDescription("List stored workspaces, most recently changed first."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var workspaceBackupToolDef = mcp.NewTool("workspace_backup",
	mcp.WithDescription("Write a whole workspace (pages, settings, media) to a JSON backup file."),
	workspaceArg(),
	mcp.WithString("path", mcp.Description("Output .json file (default: ~/.lapak/exports/<workspace>-<timestamp>.json)")),
)

var workspaceRestoreToolDef = mcp.NewTool("workspace_restore",
	mcp.WithDescription("Replace a workspace with a backup file. A rejected backup leaves the workspace untouched."),
	mcp.WithString("path", mcp.Description("Backup .json file"), mcp.Required()),
	mcp.WithString("workspace", mcp.Description("Target workspace (default: the one named in the backup)")),
	mcp.WithDestructiveHintAnnotation(true),
)

var workspaceDeleteToolDef = mcp.NewTool("workspace_delete",
	mcp.WithDescription("Delete a stored workspace with all its pages, settings and media."),
	mcp.WithString("workspace", mcp.Description("Workspace name"), mcp.Required()),
	mcp.WithDestructiveHintAnnotation(true),
)

var settingsGetToolDef = mcp.NewTool("settings_get",
	mcp.WithDescription("Return a workspace's settings."),
	workspaceArg(),
	mcp.WithReadOnlyHintAnnotation(true),
)

var settingsUpdateToolDef = mcp.NewTool("settings_update",
	mcp.WithDescription("Update workspace settings. Only the given fields change."),
	workspaceArg(),
	mcp.WithObject("settings",
		mcp.Description("Fields to set: brand_name, domain, theme (dark|light), lang (id|en), logo, favicon, wa_number, wa_template, bank_info, qris_id, qris_image"),
		mcp.Required(),
	),
)

var mediaAddToolDef = mcp.NewTool("media_add",
	mcp.WithDescription("Add an image to the media library from a file or a data URI."),
	workspaceArg(),
	mcp.WithString("path", mcp.Description("Image file")),
	mcp.WithString("data_uri", mcp.Description("Image as a data: URI")),
	mcp.WithString("name", mcp.Description("Display name (default: file name)")),
	mcp.WithString("use",
		mcp.Description("Also assign the image to a settings field"),
		mcp.Enum(ops.MediaUseLogo, ops.MediaUseFavicon, ops.MediaUseQRISImage),
	),
)

var mediaListToolDef = mcp.NewTool("media_list",
	mcp.WithDescription("List the media library."),
	workspaceArg(),
	mcp.WithReadOnlyHintAnnotation(true),
)

var mediaDeleteToolDef = mcp.NewTool("media_delete",
	mcp.WithDescription("Remove an image from the media library. Settings that used it are cleared."),
	workspaceArg(),
	mcp.WithString("id", mcp.Description("Media id"), mcp.Required()),
	mcp.WithDestructiveHintAnnotation(true),
)

var checkoutPreviewToolDef = mcp.NewTool("checkout_preview",
	mcp.WithDescription("Show what the exported page does when a checkout button is clicked: total, message, WhatsApp link or notice."),
	workspaceArg(),
	pageIDArg(),
	mcp.WithString("path", mcp.Description("Path of the button, or of a block or item containing one"), mcp.Required()),
	mcp.WithNumber("qty", mcp.Description("Quantity (default: the page's quantity field)"), mcp.Min(0)),
	mcp.WithObject("fields", mcp.Description("Contact form values by role: name, phone, message")),
	mcp.WithReadOnlyHintAnnotation(true),
)
