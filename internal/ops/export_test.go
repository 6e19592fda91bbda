package ops

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/lapak/internal/errors"
	"github.com/hpungsan/lapak/internal/export"
)

func TestRenderPage_EmptyPage(t *testing.T) {
	database, cfg, _ := newTestEnv(t)

	_, err := RenderPage(context.Background(), database, cfg, RenderInput{})
	requireCode(t, err, errors.ErrNoContent)
}

func TestRenderPage(t *testing.T) {
	ctx := context.Background()
	database, cfg, _ := newTestEnv(t)

	_, err := InsertBlock(ctx, database, cfg, InsertBlockInput{BlockID: "hero"})
	require.NoError(t, err)
	brand := "Toko Kopi"
	_, err = UpdateSettings(ctx, database, cfg, UpdateSettingsInput{Patch: settingsPatch(map[string]string{"brand_name": brand})})
	require.NoError(t, err)

	out, err := RenderPage(ctx, database, cfg, RenderInput{})
	require.NoError(t, err)
	require.Equal(t, "home", out.PageID)
	require.True(t, strings.HasPrefix(out.HTML, "<!DOCTYPE html>"))
	require.Contains(t, out.HTML, "<title>Beranda | Toko Kopi</title>")
	require.Contains(t, out.HTML, `id="`+export.RootID+`"`)
}

func TestExport_WritesFile(t *testing.T) {
	ctx := context.Background()
	database, cfg, tmpDir := newTestEnv(t)

	_, err := InsertBlock(ctx, database, cfg, InsertBlockInput{BlockID: "product"})
	require.NoError(t, err)

	path := filepath.Join(tmpDir, "landing.html")
	out, err := Export(ctx, database, cfg, ExportInput{Path: path})
	require.NoError(t, err)
	require.Equal(t, path, out.Path)
	require.Equal(t, "home", out.PageID)
	require.NotZero(t, out.ExportedAt)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, out.Bytes)
	require.Contains(t, string(data), `data-action="buy-wa"`)

	rendered, err := RenderPage(ctx, database, cfg, RenderInput{})
	require.NoError(t, err)
	require.Equal(t, rendered.HTML, string(data))
}

func TestExport_Rejected(t *testing.T) {
	ctx := context.Background()
	database, cfg, tmpDir := newTestEnv(t)

	path := filepath.Join(tmpDir, "empty.html")
	_, err := Export(ctx, database, cfg, ExportInput{Path: path})
	requireCode(t, err, errors.ErrNoContent)
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr), "nothing is written for an empty page")

	_, err = InsertBlock(ctx, database, cfg, InsertBlockInput{BlockID: "hero"})
	require.NoError(t, err)

	_, err = Export(ctx, database, cfg, ExportInput{Path: filepath.Join(tmpDir, "landing.txt")})
	requireCode(t, err, errors.ErrInvalidRequest)

	_, err = Export(ctx, database, cfg, ExportInput{Path: filepath.Join(t.TempDir(), "landing.html")})
	requireCode(t, err, errors.ErrInvalidRequest)
}

func TestExport_ReplacesExistingFile(t *testing.T) {
	ctx := context.Background()
	database, cfg, tmpDir := newTestEnv(t)

	path := filepath.Join(tmpDir, "landing.html")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	_, err := InsertBlock(ctx, database, cfg, InsertBlockInput{BlockID: "footer"})
	require.NoError(t, err)
	_, err = Export(ctx, database, cfg, ExportInput{Path: path})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `data-block-id="footer"`)
}
