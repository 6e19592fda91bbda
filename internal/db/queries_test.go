package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/hpungsan/lapak/internal/errors"
	"github.com/hpungsan/lapak/internal/workspace"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadWorkspace_Fresh(t *testing.T) {
	db := openTestDB(t)

	s, err := LoadWorkspace(context.Background(), db, "Toko Kopi", 0)
	if err != nil {
		t.Fatalf("LoadWorkspace failed: %v", err)
	}
	if s.Name() != "Toko Kopi" {
		t.Errorf("Name = %q, want %q", s.Name(), "Toko Kopi")
	}
	if pages := s.Pages(); len(pages) != 1 || pages[0].ID != workspace.HomePageID {
		t.Errorf("Pages = %+v, want single home page", pages)
	}

	// Loading does not persist anything.
	items, err := ListWorkspaces(context.Background(), db)
	if err != nil {
		t.Fatalf("ListWorkspaces failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("ListWorkspaces = %d items, want 0", len(items))
	}
}

func TestLoadWorkspace_EmptyName(t *testing.T) {
	db := openTestDB(t)

	_, err := LoadWorkspace(context.Background(), db, "  ", 0)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	s := workspace.NewNamedStore("Toko Kopi", 0)
	if err := s.ReplaceHTML(workspace.HomePageID, `<section data-block-id="hero">Hi</section>`); err != nil {
		t.Fatalf("ReplaceHTML failed: %v", err)
	}
	about := s.AddPage("About")
	m, err := s.AddMedia("logo.png", "data:image/png;base64,AA==")
	if err != nil {
		t.Fatalf("AddMedia failed: %v", err)
	}
	brand := "Kopi Kita"
	if _, err := s.UpdateSettings(workspace.SettingsPatch{BrandName: &brand, Logo: &m.ID}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}

	if err := SaveWorkspace(ctx, db, s); err != nil {
		t.Fatalf("SaveWorkspace failed: %v", err)
	}

	// Lookup is by normalized name.
	got, err := LoadWorkspace(ctx, db, "  toko   KOPI ", 0)
	if err != nil {
		t.Fatalf("LoadWorkspace failed: %v", err)
	}
	if got.Name() != "Toko Kopi" {
		t.Errorf("Name = %q, want %q", got.Name(), "Toko Kopi")
	}
	if got.CurrentID() != about.ID {
		t.Errorf("CurrentID = %q, want %q", got.CurrentID(), about.ID)
	}
	pages := got.Pages()
	if len(pages) != 2 || pages[0].ID != workspace.HomePageID || pages[1].ID != about.ID {
		t.Fatalf("Pages = %+v, want [home, about] in order", pages)
	}
	if pages[0].HTML != `<section data-block-id="hero">Hi</section>` {
		t.Errorf("home HTML = %q", pages[0].HTML)
	}
	if got.Settings().BrandName != brand || got.Settings().Logo != m.ID {
		t.Errorf("Settings = %+v", got.Settings())
	}
	if media := got.MediaList(); len(media) != 1 || media[0] != m {
		t.Errorf("Media = %+v, want [%+v]", media, m)
	}
}

func TestSaveWorkspace_ReplacesPreviousState(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	s := workspace.NewNamedStore("default", 0)
	extra := s.AddPage("Extra")
	if err := SaveWorkspace(ctx, db, s); err != nil {
		t.Fatalf("first SaveWorkspace failed: %v", err)
	}

	if err := s.DeletePage(extra.ID); err != nil {
		t.Fatalf("DeletePage failed: %v", err)
	}
	if err := SaveWorkspace(ctx, db, s); err != nil {
		t.Fatalf("second SaveWorkspace failed: %v", err)
	}

	got, err := LoadWorkspace(ctx, db, "default", 0)
	if err != nil {
		t.Fatalf("LoadWorkspace failed: %v", err)
	}
	if n := len(got.Pages()); n != 1 {
		t.Errorf("pages = %d, want 1", n)
	}
	if got.CurrentID() != workspace.HomePageID {
		t.Errorf("CurrentID = %q, want home", got.CurrentID())
	}
}

func TestLoadWorkspace_KeepsOversizedStoredPages(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	s := workspace.NewNamedStore("default", 0)
	if err := s.ReplaceHTML(workspace.HomePageID, "<p>0123456789</p>"); err != nil {
		t.Fatalf("ReplaceHTML failed: %v", err)
	}
	if err := SaveWorkspace(ctx, db, s); err != nil {
		t.Fatalf("SaveWorkspace failed: %v", err)
	}

	got, err := LoadWorkspace(ctx, db, "default", 8)
	if err != nil {
		t.Fatalf("LoadWorkspace failed: %v", err)
	}
	if err := got.ReplaceHTML(workspace.HomePageID, "<p>0123456789</p>"); !errors.Is(err, errors.ErrPageTooLarge) {
		t.Errorf("ReplaceHTML err = %v, want PAGE_TOO_LARGE", err)
	}
}

func TestListAndDeleteWorkspaces(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	for _, name := range []string{"alpha", "beta"} {
		s := workspace.NewNamedStore(name, 0)
		s.AddPage("Second")
		if err := SaveWorkspace(ctx, db, s); err != nil {
			t.Fatalf("SaveWorkspace(%s) failed: %v", name, err)
		}
	}

	items, err := ListWorkspaces(ctx, db)
	if err != nil {
		t.Fatalf("ListWorkspaces failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ListWorkspaces = %d items, want 2", len(items))
	}
	for _, w := range items {
		if w.Pages != 2 || w.Media != 0 {
			t.Errorf("%s: pages=%d media=%d, want 2/0", w.Name, w.Pages, w.Media)
		}
	}

	if err := DeleteWorkspace(ctx, db, "ALPHA"); err != nil {
		t.Fatalf("DeleteWorkspace failed: %v", err)
	}
	var pages int
	if err := db.QueryRow("SELECT COUNT(*) FROM pages WHERE workspace_norm = 'alpha'").Scan(&pages); err != nil {
		t.Fatalf("count pages: %v", err)
	}
	if pages != 0 {
		t.Errorf("pages left after delete = %d, want 0", pages)
	}

	if err := DeleteWorkspace(ctx, db, "alpha"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second DeleteWorkspace err = %v, want NOT_FOUND", err)
	}
}

func TestSaveWorkspace_Cancelled(t *testing.T) {
	db := openTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := SaveWorkspace(ctx, db, workspace.NewNamedStore("default", 0))
	if err == nil {
		t.Fatal("SaveWorkspace with cancelled context succeeded")
	}

	items, err := ListWorkspaces(context.Background(), db)
	if err != nil {
		t.Fatalf("ListWorkspaces failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("ListWorkspaces = %d items, want 0", len(items))
	}
}
