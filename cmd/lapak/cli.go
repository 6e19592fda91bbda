package main

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/lapak/internal/config"
	"github.com/hpungsan/lapak/internal/errors"
	"github.com/hpungsan/lapak/internal/ops"
	"github.com/hpungsan/lapak/internal/web"
	"github.com/hpungsan/lapak/internal/workspace"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.App {
	app := &cli.App{
		Name:     "lapak",
		Usage:    "Build landing pages and storefronts, export them as standalone HTML",
		Version:  Version,
		Commands: commands(db, cfg, logger),
		// Contact field values may contain commas.
		DisableSliceFlagSeparator: true,
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func commands(db *sql.DB, cfg *config.Config, logger *zap.Logger) []*cli.Command {
	return []*cli.Command{
		pagesCmd(db, cfg),
		pageAddCmd(db, cfg),
		pageDuplicateCmd(db, cfg),
		pageSelectCmd(db, cfg),
		pageRenameCmd(db, cfg),
		pageDeleteCmd(db, cfg),
		workspacesCmd(db),
		workspaceDeleteCmd(db),
		blocksCmd(),
		insertCmd(db, cfg),
		outlineCmd(db, cfg),
		editCmd(db, cfg),
		exportCmd(db, cfg),
		backupCmd(db, cfg),
		restoreCmd(db, cfg),
		settingsCmd(db, cfg),
		settingsSetCmd(db, cfg),
		settingsApplyCmd(db, cfg),
		mediaAddCmd(db, cfg),
		mediaListCmd(db, cfg),
		mediaDeleteCmd(db, cfg),
		checkoutCmd(db, cfg),
		serveCmd(db, cfg, logger),
	}
}

// cliCommands contains known CLI subcommands.
func cliCommands() map[string]bool {
	known := map[string]bool{"help": true}
	for _, c := range commands(nil, nil, nil) {
		known[c.Name] = true
	}
	return known
}

func workspaceFlag() cli.Flag {
	return &cli.StringFlag{Name: "workspace", Aliases: []string{"w"}, Value: ops.DefaultWorkspace, Usage: "Workspace name"}
}

func pageFlag() cli.Flag {
	return &cli.StringFlag{Name: "page", Aliases: []string{"p"}, Usage: "Page ID (default: active page)"}
}

// pagesCmd creates the pages command.
func pagesCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "pages",
		Usage: "List the pages of a workspace",
		Flags: []cli.Flag{workspaceFlag()},
		Action: func(c *cli.Context) error {
			output, err := ops.ListPages(c.Context, db, cfg, ops.ListPagesInput{Workspace: c.String("workspace")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// pageAddCmd creates the page-add command.
func pageAddCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "page-add",
		Usage: "Append an empty page and make it active",
		Flags: []cli.Flag{
			workspaceFlag(),
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Page name (default: New Page)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.AddPage(c.Context, db, cfg, ops.AddPageInput{
				Workspace: c.String("workspace"),
				Name:      c.String("name"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// pageDuplicateCmd creates the page-duplicate command.
func pageDuplicateCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "page-duplicate",
		Usage:     "Copy a page and its content",
		ArgsUsage: "[id]",
		Flags:     []cli.Flag{workspaceFlag()},
		Action: func(c *cli.Context) error {
			output, err := ops.DuplicatePage(c.Context, db, cfg, pageInput(c))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// pageSelectCmd creates the page-select command.
func pageSelectCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "page-select",
		Usage:     "Make a page the active page",
		ArgsUsage: "<id>",
		Flags:     []cli.Flag{workspaceFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("page id is required"))
			}
			output, err := ops.SelectPage(c.Context, db, cfg, pageInput(c))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// pageRenameCmd creates the page-rename command.
func pageRenameCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "page-rename",
		Usage:     "Rename a page",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			workspaceFlag(),
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "New page name"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.RenamePage(c.Context, db, cfg, ops.RenamePageInput{
				Workspace: c.String("workspace"),
				PageID:    c.Args().First(),
				Name:      c.String("name"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// pageDeleteCmd creates the page-delete command.
func pageDeleteCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "page-delete",
		Usage:     "Delete a page (the last page cannot be deleted)",
		ArgsUsage: "[id]",
		Flags:     []cli.Flag{workspaceFlag()},
		Action: func(c *cli.Context) error {
			output, err := ops.DeletePage(c.Context, db, cfg, pageInput(c))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// workspacesCmd creates the workspaces command.
func workspacesCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "workspaces",
		Usage: "List stored workspaces",
		Action: func(c *cli.Context) error {
			output, err := ops.ListWorkspaces(c.Context, db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// workspaceDeleteCmd creates the workspace-delete command.
func workspaceDeleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "workspace-delete",
		Usage:     "Delete a stored workspace with its pages and media",
		ArgsUsage: "<name>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("workspace-delete requires exactly one workspace name"))
			}
			output, err := ops.DeleteWorkspace(c.Context, db, ops.DeleteWorkspaceInput{Workspace: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// blocksCmd creates the blocks command.
func blocksCmd() *cli.Command {
	return &cli.Command{
		Name:  "blocks",
		Usage: "List the block templates by palette category",
		Action: func(c *cli.Context) error {
			return outputJSON(c, ops.Catalog())
		},
	}
}

// insertCmd creates the insert command.
func insertCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "insert",
		Usage:     "Append a block template to a page",
		ArgsUsage: "<block-id>",
		Flags:     []cli.Flag{workspaceFlag(), pageFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("block id is required"))
			}
			output, err := ops.InsertBlock(c.Context, db, cfg, ops.InsertBlockInput{
				Workspace: c.String("workspace"),
				PageID:    c.String("page"),
				BlockID:   c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// outlineCmd creates the outline command.
func outlineCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "outline",
		Usage: "Show a page's blocks and element paths",
		Flags: []cli.Flag{
			workspaceFlag(),
			pageFlag(),
			&cli.IntFlag{Name: "depth", Aliases: []string{"d"}, Usage: "Maximum nesting below the top level (0: unlimited)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Outline(c.Context, db, cfg, ops.OutlineInput{
				Workspace: c.String("workspace"),
				PageID:    c.String("page"),
				MaxDepth:  c.Int("depth"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// editCmd creates the edit command.
func editCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Apply an inspector operation to the element at a path",
		ArgsUsage: "<path> <op> [value]",
		Flags: []cli.Flag{
			workspaceFlag(),
			pageFlag(),
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: string(ops.EditModeFocus), Usage: "Selection mode: focus|click"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return outputError(errors.NewInvalidRequest("path and op are required"))
			}
			output, err := ops.Edit(c.Context, db, cfg, ops.EditInput{
				Workspace: c.String("workspace"),
				PageID:    c.String("page"),
				Path:      c.Args().Get(0),
				Mode:      ops.EditMode(c.String("mode")),
				Op:        c.Args().Get(1),
				Value:     strings.Join(c.Args().Slice()[2:], " "),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export a page as a standalone HTML file",
		Flags: []cli.Flag{
			workspaceFlag(),
			pageFlag(),
			&cli.StringFlag{Name: "path", Usage: "Output .html path (default: ~/.lapak/exports/<workspace>-<page>-<timestamp>.html)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, cfg, ops.ExportInput{
				Workspace: c.String("workspace"),
				PageID:    c.String("page"),
				Path:      c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// backupCmd creates the backup command.
func backupCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Write a workspace backup JSON file",
		Flags: []cli.Flag{
			workspaceFlag(),
			&cli.StringFlag{Name: "path", Usage: "Output .json path (default: ~/.lapak/exports/<workspace>-<timestamp>.json)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Backup(c.Context, db, cfg, ops.BackupInput{
				Workspace: c.String("workspace"),
				Path:      c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// restoreCmd creates the restore command.
func restoreCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "restore",
		Usage: "Replace a workspace with the contents of a backup file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Required: true, Usage: "Backup .json path"},
			&cli.StringFlag{Name: "workspace", Aliases: []string{"w"}, Usage: "Target workspace (default: the one named in the backup)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Restore(c.Context, db, cfg, ops.RestoreInput{
				Path:      c.String("path"),
				Workspace: c.String("workspace"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// settingsCmd creates the settings command.
func settingsCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show workspace settings",
		Flags: []cli.Flag{workspaceFlag()},
		Action: func(c *cli.Context) error {
			output, err := ops.GetSettings(c.Context, db, cfg, c.String("workspace"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// settingFlags maps settings-set flags to the patch fields they fill.
var settingFlags = []struct {
	name  string
	usage string
	field func(p *workspace.SettingsPatch) **string
}{
	{"brand-name", "Brand shown in titles and the navbar", func(p *workspace.SettingsPatch) **string { return &p.BrandName }},
	{"domain", "Published domain", func(p *workspace.SettingsPatch) **string { return &p.Domain }},
	{"theme", "dark|light", func(p *workspace.SettingsPatch) **string { return &p.Theme }},
	{"lang", "id|en", func(p *workspace.SettingsPatch) **string { return &p.Lang }},
	{"logo", "Media ID of the logo", func(p *workspace.SettingsPatch) **string { return &p.Logo }},
	{"favicon", "Media ID of the favicon", func(p *workspace.SettingsPatch) **string { return &p.Favicon }},
	{"wa-number", "WhatsApp number receiving orders", func(p *workspace.SettingsPatch) **string { return &p.WANumber }},
	{"wa-template", "Order message with {{product}}, {{qty}} and {{total}}", func(p *workspace.SettingsPatch) **string { return &p.WATemplate }},
	{"bank-info", "Bank transfer instructions", func(p *workspace.SettingsPatch) **string { return &p.BankInfo }},
	{"qris-id", "QRIS merchant ID", func(p *workspace.SettingsPatch) **string { return &p.QRISID }},
	{"qris-image", "Media ID of the QRIS code", func(p *workspace.SettingsPatch) **string { return &p.QRISImage }},
}

// settingsSetCmd creates the settings-set command.
func settingsSetCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	flags := []cli.Flag{workspaceFlag()}
	for _, f := range settingFlags {
		flags = append(flags, &cli.StringFlag{Name: f.name, Usage: f.usage})
	}
	return &cli.Command{
		Name:  "settings-set",
		Usage: "Update workspace settings (only the given flags change)",
		Flags: flags,
		Action: func(c *cli.Context) error {
			var patch workspace.SettingsPatch
			for _, f := range settingFlags {
				if c.IsSet(f.name) {
					v := c.String(f.name)
					*f.field(&patch) = &v
				}
			}
			output, err := ops.UpdateSettings(c.Context, db, cfg, ops.UpdateSettingsInput{
				Workspace: c.String("workspace"),
				Patch:     patch,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// settingsApplyCmd creates the settings-apply command.
func settingsApplyCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "settings-apply",
		Usage: "Apply settings from a YAML file",
		Flags: []cli.Flag{
			workspaceFlag(),
			&cli.StringFlag{Name: "path", Required: true, Usage: "Settings .yaml path"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ApplySettingsFile(c.Context, db, cfg, ops.ApplySettingsFileInput{
				Workspace: c.String("workspace"),
				Path:      c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// mediaAddCmd creates the media-add command.
func mediaAddCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "media-add",
		Usage:     "Add an image to the workspace media library",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			workspaceFlag(),
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name (default: file name)"},
			&cli.StringFlag{Name: "use", Usage: "Also set as logo|favicon|qris_image"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("file path is required"))
			}
			output, err := ops.AddMedia(c.Context, db, cfg, ops.AddMediaInput{
				Workspace: c.String("workspace"),
				Path:      c.Args().First(),
				Name:      c.String("name"),
				Use:       c.String("use"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// mediaListCmd creates the media-list command.
func mediaListCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "media-list",
		Usage: "List the workspace media library",
		Flags: []cli.Flag{workspaceFlag()},
		Action: func(c *cli.Context) error {
			output, err := ops.ListMedia(c.Context, db, cfg, c.String("workspace"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// mediaDeleteCmd creates the media-delete command.
func mediaDeleteCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "media-delete",
		Usage:     "Remove an image from the media library",
		ArgsUsage: "<id>",
		Flags:     []cli.Flag{workspaceFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("media id is required"))
			}
			output, err := ops.DeleteMedia(c.Context, db, cfg, ops.DeleteMediaInput{
				Workspace: c.String("workspace"),
				ID:        c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// checkoutCmd creates the checkout command.
func checkoutCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "checkout",
		Usage:     "Preview what a buy or contact button does on the exported page",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			workspaceFlag(),
			pageFlag(),
			&cli.Int64Flag{Name: "qty", Aliases: []string{"q"}, Usage: "Quantity (default: the quantity field)"},
			&cli.StringSliceFlag{Name: "field", Aliases: []string{"f"}, Usage: "Contact field value as role=value (repeatable)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("path is required"))
			}
			fields, err := parseFields(c.StringSlice("field"))
			if err != nil {
				return outputError(err)
			}
			output, err := ops.PreviewCheckout(c.Context, db, cfg, ops.CheckoutInput{
				Workspace: c.String("workspace"),
				PageID:    c.String("page"),
				Path:      c.Args().First(),
				Qty:       c.Int64("qty"),
				Fields:    fields,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web builder UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (default: config web_bind)"},
			&cli.IntFlag{Name: "port", Usage: "Port (default: config web_port)"},
		},
		Action: func(c *cli.Context) error {
			bind, port := cfg.WebBind, cfg.WebPort
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			if c.IsSet("port") {
				port = c.Int("port")
			}
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("invalid port %d", port)))
			}
			srv := web.NewServer(db, cfg, Version, bind, port, logger)
			return web.Run(srv, logger)
		},
	}
}

// Helper functions

func pageInput(c *cli.Context) ops.PageInput {
	return ops.PageInput{Workspace: c.String("workspace"), PageID: c.Args().First()}
}

// outputJSON writes result to the app's writer as indented JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var lErr *errors.LapakError
	if stderrors.As(err, &lErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", lErr.Code, lErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseFields splits role=value pairs.
func parseFields(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	fields := make(map[string]string, len(pairs))
	for _, p := range pairs {
		role, value, ok := strings.Cut(p, "=")
		role = strings.TrimSpace(role)
		if !ok || role == "" {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid field %q: want role=value", p))
		}
		fields[role] = value
	}
	return fields, nil
}
