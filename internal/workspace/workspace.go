// Package workspace is the page state store: the ordered pages of a workspace,
// the active page, settings and the media library.
//
// Page content is an opaque markup blob and is only ever replaced whole.
// A Store is not safe for concurrent use; callers load one per operation.
package workspace

import (
	"fmt"
	"strings"

	"github.com/hpungsan/lapak/internal/errors"
)

// Default page of a fresh workspace.
const (
	HomePageID   = "home"
	HomePageName = "Beranda"
	NewPageName  = "New Page"
	copySuffix   = " (Copy)"
)

// Page is one page of the site.
type Page struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	HTML string `json:"html"`
}

// Media is an image stored as a data URI.
type Media struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	DataURI string `json:"data_uri"`
}

// Store holds one workspace.
type Store struct {
	pages        []Page
	current      string
	settings     Settings
	media        []Media
	maxPageBytes int
}

// NewStore returns a workspace with a single empty home page and default settings.
// maxPageBytes <= 0 disables the page size check.
func NewStore(maxPageBytes int) *Store {
	return &Store{
		pages:        []Page{{ID: HomePageID, Name: HomePageName}},
		current:      HomePageID,
		settings:     DefaultSettings(),
		maxPageBytes: maxPageBytes,
	}
}

// NewNamedStore is NewStore for the workspace called name.
func NewNamedStore(name string, maxPageBytes int) *Store {
	s := NewStore(maxPageBytes)
	if name = strings.TrimSpace(name); name != "" {
		s.settings.Workspace = name
	}
	return s
}

// Name is the workspace's display name.
func (s *Store) Name() string { return s.settings.Workspace }

// SetMaxPageBytes changes the page size limit for later writes.
// Content already stored is kept.
func (s *Store) SetMaxPageBytes(n int) { s.maxPageBytes = n }

// Pages returns the pages in order.
func (s *Store) Pages() []Page {
	out := make([]Page, len(s.pages))
	copy(out, s.pages)
	return out
}

func (s *Store) index(id string) int {
	for i, p := range s.pages {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Page returns the page with id.
func (s *Store) Page(id string) (Page, error) {
	i := s.index(id)
	if i < 0 {
		return Page{}, errors.NewNotFound("page", id)
	}
	return s.pages[i], nil
}

// CurrentID returns the id of the active page.
func (s *Store) CurrentID() string { return s.current }

// Current returns the active page.
func (s *Store) Current() Page {
	p, _ := s.Page(s.current)
	return p
}

// Resolve returns the page with id, or the active page when id is empty.
func (s *Store) Resolve(id string) (Page, error) {
	if strings.TrimSpace(id) == "" {
		return s.Current(), nil
	}
	return s.Page(id)
}

// AddPage appends an empty page and makes it active.
func (s *Store) AddPage(name string) Page {
	name = strings.TrimSpace(name)
	if name == "" {
		name = NewPageName
	}
	p := Page{ID: NewID("page"), Name: name}
	s.pages = append(s.pages, p)
	s.current = p.ID
	return p
}

// DuplicatePage copies a page's name and content into a new page placed right
// after it, and makes the copy active.
func (s *Store) DuplicatePage(id string) (Page, error) {
	i := s.index(id)
	if i < 0 {
		return Page{}, errors.NewNotFound("page", id)
	}
	src := s.pages[i]
	p := Page{ID: NewID("page"), Name: src.Name + copySuffix, HTML: src.HTML}
	s.pages = append(s.pages, Page{})
	copy(s.pages[i+2:], s.pages[i+1:])
	s.pages[i+1] = p
	s.current = p.ID
	return p, nil
}

// Select makes id the active page.
func (s *Store) Select(id string) error {
	if s.index(id) < 0 {
		return errors.NewNotFound("page", id)
	}
	s.current = id
	return nil
}

// Rename changes a page's display name.
func (s *Store) Rename(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.NewInvalidRequest("page name is required")
	}
	i := s.index(id)
	if i < 0 {
		return errors.NewNotFound("page", id)
	}
	s.pages[i].Name = name
	return nil
}

// DeletePage removes a page. The last remaining page cannot be deleted.
// Deleting the active page activates its neighbour.
func (s *Store) DeletePage(id string) error {
	i := s.index(id)
	if i < 0 {
		return errors.NewNotFound("page", id)
	}
	if len(s.pages) == 1 {
		return errors.NewInvalidRequest("cannot delete the only page")
	}
	s.pages = append(s.pages[:i], s.pages[i+1:]...)
	if s.current == id {
		if i >= len(s.pages) {
			i = len(s.pages) - 1
		}
		s.current = s.pages[i].ID
	}
	return nil
}

// ReplaceHTML swaps the markup blob of a page. The content is not validated
// beyond its size.
func (s *Store) ReplaceHTML(id, html string) error {
	i := s.index(id)
	if i < 0 {
		return errors.NewNotFound("page", id)
	}
	if s.maxPageBytes > 0 && len(html) > s.maxPageBytes {
		return errors.NewPageTooLarge(s.maxPageBytes, len(html))
	}
	s.pages[i].HTML = html
	return nil
}

// Settings returns the workspace settings.
func (s *Store) Settings() Settings { return s.settings }

// UpdateSettings applies a patch after validating the result.
func (s *Store) UpdateSettings(p SettingsPatch) (Settings, error) {
	next := p.Apply(s.settings)
	if err := next.Validate(); err != nil {
		return s.settings, err
	}
	for _, ref := range []struct{ field, id string }{
		{"logo", next.Logo}, {"favicon", next.Favicon}, {"qris_image", next.QRISImage},
	} {
		if ref.id == "" {
			continue
		}
		if _, ok := s.Media(ref.id); !ok {
			return s.settings, errors.NewInvalidRequest(fmt.Sprintf("%s refers to unknown media %q", ref.field, ref.id))
		}
	}
	s.settings = next
	return next, nil
}

// MediaList returns the media library in insertion order.
func (s *Store) MediaList() []Media {
	out := make([]Media, len(s.media))
	copy(out, s.media)
	return out
}

// Media looks up a media item by id.
func (s *Store) Media(id string) (Media, bool) {
	for _, m := range s.media {
		if m.ID == id {
			return m, true
		}
	}
	return Media{}, false
}

// IsImageDataURI reports whether uri is a data URI with an image/ media type.
// Exported pages inline media as img sources, so nothing else is stored.
func IsImageDataURI(uri string) bool {
	const prefix = "data:image/"
	return len(uri) > len(prefix) && strings.EqualFold(uri[:len(prefix)], prefix)
}

// AddMedia stores an image and returns it with a fresh id.
func (s *Store) AddMedia(name, dataURI string) (Media, error) {
	if !IsImageDataURI(dataURI) {
		return Media{}, errors.NewInvalidRequest("media must be an image data URI")
	}
	m := Media{ID: NewID("media"), Name: strings.TrimSpace(name), DataURI: dataURI}
	s.media = append(s.media, m)
	return m, nil
}

// DeleteMedia removes a media item. Settings that referenced it are cleared.
func (s *Store) DeleteMedia(id string) error {
	for i, m := range s.media {
		if m.ID != id {
			continue
		}
		s.media = append(s.media[:i], s.media[i+1:]...)
		for _, ref := range []*string{&s.settings.Logo, &s.settings.Favicon, &s.settings.QRISImage} {
			if *ref == id {
				*ref = ""
			}
		}
		return nil
	}
	return errors.NewNotFound("media", id)
}
