package ops

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/hpungsan/lapak/internal/config"
	"github.com/hpungsan/lapak/internal/errors"
	"github.com/hpungsan/lapak/internal/workspace"
)

// MaxMediaBytes bounds one uploaded image.
const MaxMediaBytes = 2 << 20

// Settings fields a media item can be assigned to on upload.
const (
	MediaUseLogo      = "logo"
	MediaUseFavicon   = "favicon"
	MediaUseQRISImage = "qris_image"
)

// MediaItem describes a media item without its data.
type MediaItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Bytes int    `json:"bytes"`
}

func mediaItem(m workspace.Media) MediaItem {
	mime := strings.TrimPrefix(m.DataURI, "data:")
	if i := strings.IndexAny(mime, ";,"); i >= 0 {
		mime = mime[:i]
	}
	return MediaItem{ID: m.ID, Name: m.Name, Type: mime, Bytes: len(m.DataURI)}
}

// AddMediaInput contains parameters for the AddMedia operation.
// Exactly one of Path and DataURI is required.
type AddMediaInput struct {
	Workspace string
	Path      string // image file
	DataURI   string
	Name      string // default: file base name
	Use       string // optional: logo, favicon or qris_image
}

// AddMediaOutput contains the result of the AddMedia operation.
type AddMediaOutput struct {
	Media MediaItem `json:"media"`
	Use   string    `json:"use,omitempty"`
}

// AddMedia stores an image in the workspace library and optionally assigns it
// to a settings field.
func AddMedia(ctx context.Context, database *sql.DB, cfg *config.Config, input AddMediaInput) (*AddMediaOutput, error) {
	hasPath, hasData := input.Path != "", input.DataURI != ""
	if hasPath == hasData {
		return nil, errors.NewInvalidRequest("exactly one of path or data_uri is required")
	}
	if err := validMediaUse(input.Use); err != nil {
		return nil, err
	}

	uri, name := input.DataURI, strings.TrimSpace(input.Name)
	if hasPath {
		data, err := readFileLimited(cfg, input.Path, ImageExtensions, MaxMediaBytes)
		if err != nil {
			return nil, err
		}
		if uri, err = imageDataURI(data, input.Path); err != nil {
			return nil, err
		}
		if name == "" {
			name = filepath.Base(input.Path)
		}
	} else if len(uri) > MaxMediaBytes*4/3+64 {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("image exceeds %d bytes", MaxMediaBytes))
	} else if !workspace.IsImageDataURI(uri) {
		return nil, errors.NewInvalidRequest("data_uri must be a data:image/ URI")
	}

	var m workspace.Media
	_, err := mutate(ctx, database, cfg, input.Workspace, func(s *workspace.Store) error {
		var err error
		if m, err = s.AddMedia(name, uri); err != nil {
			return err
		}
		if input.Use != "" {
			id := m.ID
			_, err = s.UpdateSettings(usePatch(input.Use, &id))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &AddMediaOutput{Media: mediaItem(m), Use: input.Use}, nil
}

func validMediaUse(use string) error {
	switch use {
	case "", MediaUseLogo, MediaUseFavicon, MediaUseQRISImage:
		return nil
	}
	return errors.NewInvalidRequest(fmt.Sprintf("use must be one of %s, %s, %s", MediaUseLogo, MediaUseFavicon, MediaUseQRISImage))
}

func usePatch(use string, id *string) workspace.SettingsPatch {
	switch use {
	case MediaUseLogo:
		return workspace.SettingsPatch{Logo: id}
	case MediaUseFavicon:
		return workspace.SettingsPatch{Favicon: id}
	default:
		return workspace.SettingsPatch{QRISImage: id}
	}
}

// imageDataURI sniffs data and encodes it as a base64 data URI. Only images
// are accepted.
func imageDataURI(data []byte, name string) (string, error) {
	mime := http.DetectContentType(data)
	if strings.EqualFold(filepath.Ext(name), ".svg") && !strings.HasPrefix(mime, "image/") {
		if !strings.Contains(string(data), "<svg") {
			return "", errors.NewInvalidRequest("file is not an SVG image")
		}
		mime = "image/svg+xml"
	}
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if !strings.HasPrefix(mime, "image/") {
		return "", errors.NewInvalidRequest(fmt.Sprintf("file is not an image (detected %s)", mime))
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// ListMediaOutput contains the result of the ListMedia operation.
type ListMediaOutput struct {
	Workspace string      `json:"workspace"`
	Media     []MediaItem `json:"media"`
}

// ListMedia lists a workspace's media library.
func ListMedia(ctx context.Context, database *sql.DB, cfg *config.Config, ws string) (*ListMediaOutput, error) {
	s, err := load(ctx, database, cfg, ws)
	if err != nil {
		return nil, err
	}
	out := &ListMediaOutput{Workspace: s.Name(), Media: []MediaItem{}}
	for _, m := range s.MediaList() {
		out.Media = append(out.Media, mediaItem(m))
	}
	return out, nil
}

// DeleteMediaInput contains parameters for the DeleteMedia operation.
type DeleteMediaInput struct {
	Workspace string
	ID        string
}

// DeleteMediaOutput contains the result of the DeleteMedia operation.
type DeleteMediaOutput struct {
	Deleted string `json:"deleted"`
}

// DeleteMedia removes a media item; settings that used it are cleared. Images
// already bound into pages keep their inline copy.
func DeleteMedia(ctx context.Context, database *sql.DB, cfg *config.Config, input DeleteMediaInput) (*DeleteMediaOutput, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	_, err := mutate(ctx, database, cfg, input.Workspace, func(s *workspace.Store) error {
		return s.DeleteMedia(input.ID)
	})
	if err != nil {
		return nil, err
	}
	return &DeleteMediaOutput{Deleted: input.ID}, nil
}
