package ops

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/lapak/internal/errors"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestAddMedia_FromFile(t *testing.T) {
	ctx := context.Background()
	database, cfg, tmpDir := newTestEnv(t)

	path := filepath.Join(tmpDir, "qris.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o644))

	out, err := AddMedia(ctx, database, cfg, AddMediaInput{Path: path, Use: MediaUseQRISImage})
	require.NoError(t, err)
	require.Equal(t, "qris.png", out.Media.Name)
	require.Equal(t, "image/png", out.Media.Type)
	require.Equal(t, MediaUseQRISImage, out.Use)

	settings, err := GetSettings(ctx, database, cfg, "")
	require.NoError(t, err)
	require.Equal(t, out.Media.ID, settings.Settings.QRISImage)

	list, err := ListMedia(ctx, database, cfg, "")
	require.NoError(t, err)
	require.Len(t, list.Media, 1)
	require.Equal(t, out.Media, list.Media[0])
}

func TestAddMedia_SVG(t *testing.T) {
	ctx := context.Background()
	database, cfg, tmpDir := newTestEnv(t)

	path := filepath.Join(tmpDir, "logo.svg")
	require.NoError(t, os.WriteFile(path, []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`), 0o644))

	out, err := AddMedia(ctx, database, cfg, AddMediaInput{Path: path, Name: "Logo", Use: MediaUseLogo})
	require.NoError(t, err)
	require.Equal(t, "Logo", out.Media.Name)
	require.Equal(t, "image/svg+xml", out.Media.Type)
}

func TestAddMedia_Rejected(t *testing.T) {
	ctx := context.Background()
	database, cfg, tmpDir := newTestEnv(t)

	notImage := filepath.Join(tmpDir, "fake.png")
	require.NoError(t, os.WriteFile(notImage, []byte("just some text"), 0o644))
	tooBig := filepath.Join(tmpDir, "big.png")
	require.NoError(t, os.WriteFile(tooBig, append(pngHeader, make([]byte, MaxMediaBytes)...), 0o644))

	tests := []struct {
		name  string
		input AddMediaInput
		code  errors.ErrorCode
	}{
		{"neither source", AddMediaInput{}, errors.ErrInvalidRequest},
		{"both sources", AddMediaInput{Path: notImage, DataURI: "data:image/png;base64,AA=="}, errors.ErrInvalidRequest},
		{"bad use", AddMediaInput{DataURI: "data:image/png;base64,AA==", Use: "banner"}, errors.ErrInvalidRequest},
		{"not a data uri", AddMediaInput{DataURI: "https://example.com/a.png"}, errors.ErrInvalidRequest},
		{"html data uri", AddMediaInput{DataURI: "data:text/html,<script>alert(1)</script>"}, errors.ErrInvalidRequest},
		{"plain text data uri", AddMediaInput{DataURI: "data:,hello"}, errors.ErrInvalidRequest},
		{"bare image prefix", AddMediaInput{DataURI: "data:image/"}, errors.ErrInvalidRequest},
		{"not an image", AddMediaInput{Path: notImage}, errors.ErrInvalidRequest},
		{"too big", AddMediaInput{Path: tooBig}, errors.ErrInvalidRequest},
		{"missing file", AddMediaInput{Path: filepath.Join(tmpDir, "nope.png")}, errors.ErrFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddMedia(ctx, database, cfg, tt.input)
			requireCode(t, err, tt.code)
		})
	}

	list, err := ListMedia(ctx, database, cfg, "")
	require.NoError(t, err)
	require.Empty(t, list.Media)
}

func TestDeleteMedia(t *testing.T) {
	ctx := context.Background()
	database, cfg, _ := newTestEnv(t)

	added, err := AddMedia(ctx, database, cfg, AddMediaInput{DataURI: "data:image/png;base64,AA==", Use: MediaUseFavicon})
	require.NoError(t, err)

	out, err := DeleteMedia(ctx, database, cfg, DeleteMediaInput{ID: added.Media.ID})
	require.NoError(t, err)
	require.Equal(t, added.Media.ID, out.Deleted)

	settings, err := GetSettings(ctx, database, cfg, "")
	require.NoError(t, err)
	require.Empty(t, settings.Settings.Favicon, "settings referencing deleted media are cleared")

	_, err = DeleteMedia(ctx, database, cfg, DeleteMediaInput{ID: added.Media.ID})
	requireCode(t, err, errors.ErrNotFound)

	_, err = DeleteMedia(ctx, database, cfg, DeleteMediaInput{ID: " "})
	requireCode(t, err, errors.ErrInvalidRequest)
}

func TestImageDataURI(t *testing.T) {
	uri, err := imageDataURI(pngHeader, "a.png")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	_, err = imageDataURI([]byte("<html></html>"), "a.svg")
	requireCode(t, err, errors.ErrInvalidRequest)
}
