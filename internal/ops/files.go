package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hpungsan/lapak/internal/config"
	"github.com/hpungsan/lapak/internal/errors"
)

// writeFileAtomic validates path, writes through a temp file next to it and
// renames the result into place. An existing file survives any failure.
func writeFileAtomic(ctx context.Context, cfg *config.Config, path string, exts []string, write func(io.Writer) error) (string, error) {
	if err := ValidatePath(path, PathCheckWrite, cfg, exts...); err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0700); err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to create directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := absPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to create file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if err := write(file); err != nil {
		return "", toLapakError(err)
	}
	if ctx.Err() != nil {
		return "", errors.NewCancelled("write " + filepath.Base(absPath))
	}
	if err := file.Sync(); err != nil {
		return "", errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to close file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink at the destination.
	if info, err := os.Lstat(absPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return "", errors.NewInvalidRequest("path must not be a symlink")
	}

	// On Windows, os.Rename fails if the destination exists. Fail safely
	// rather than delete-then-rename.
	if err := os.Rename(tempPath, absPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(absPath); statErr == nil {
				return "", errors.NewInvalidRequest("destination already exists; overwriting is not supported on Windows (choose a new path or delete the existing file)")
			}
		}
		return "", errors.NewInternal(fmt.Errorf("failed to finalize file: %w", err))
	}

	success = true
	return absPath, nil
}

// readFileLimited validates path and reads at most max bytes from it.
func readFileLimited(cfg *config.Config, path string, exts []string, max int64) ([]byte, error) {
	if err := ValidatePath(path, PathCheckRead, cfg, exts...); err != nil {
		return nil, err
	}
	file, err := openFileNoFollowRead(filepath.Clean(path))
	if err != nil {
		return nil, toLapakError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, max+1))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read file: %w", err))
	}
	if int64(len(data)) > max {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("file exceeds %d bytes", max))
	}
	return data, nil
}

// defaultFilePath is ~/.lapak/exports/<workspace>-<page>-<timestamp><ext>.
func defaultFilePath(now time.Time, ext string, parts ...string) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(parts)+1)
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			names = append(names, SanitizeForFilename(p))
		}
	}
	names = append(names, now.Format("2006-01-02T150405"))
	return filepath.Join(dir, strings.Join(names, "-")+ext), nil
}
