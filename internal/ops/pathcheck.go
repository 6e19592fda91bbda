package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/hpungsan/lapak/internal/config"
	"github.com/hpungsan/lapak/internal/errors"
)

// PathCheckMode indicates whether the path check is for reading or writing.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // restore, settings file, media upload
	PathCheckWrite                      // html export, backup
)

// Accepted file extensions per kind of file.
var (
	HTMLExtensions     = []string{".html", ".htm"}
	BackupExtensions   = []string{".json"}
	SettingsExtensions = []string{".yaml", ".yml"}
	ImageExtensions    = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".ico"}
)

// ValidatePath checks a file path supplied for export, backup, restore,
// settings or media. The path must:
//   - contain no ".." component
//   - end in one of exts (case-insensitive)
//   - sit directly in ~/.lapak/exports or an allowed_paths entry, not in a
//     subdirectory, unless AllowUnsafePaths is set
//   - not be a symlink, nor have a symlinked parent directory
//
// In read mode the file must also exist. Files are later opened with
// O_NOFOLLOW; keeping them one level deep leaves no intermediate directory
// that could be swapped for a symlink between this check and the open.
func ValidatePath(path string, mode PathCheckMode, cfg *config.Config, exts ...string) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if !hasExtension(cleaned, exts) {
		return errors.NewInvalidRequest(fmt.Sprintf("path must have one of these extensions: %s", strings.Join(exts, ", ")))
	}
	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	if cfg == nil || !cfg.AllowUnsafePaths {
		allowedDirs, err := getAllowedDirs(cfg)
		if err != nil {
			return err
		}
		parentDir := filepath.Dir(absPath)
		if !isDirectlyInAllowedDir(parentDir, allowedDirs) {
			return errors.NewInvalidRequest(fmt.Sprintf(
				"file must be directly in an allowed directory (no subdirectories); allowed: %v", allowedDirs))
		}
		if isSymlink(parentDir) {
			return errors.NewInvalidRequest("parent directory must not be a symlink")
		}
	}

	if mode == PathCheckRead {
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
	}
	// Symlinked files are refused even with AllowUnsafePaths.
	if isSymlink(absPath) {
		return errors.NewInvalidRequest("path must not be a symlink")
	}
	return nil
}

func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// getAllowedDirs returns the default exports directory plus the absolute
// allowed_paths entries, cleaned. Entries that are symlinks are resolved so
// they match the real parent of a file inside them.
func getAllowedDirs(cfg *config.Config) ([]string, error) {
	exports, err := DefaultExportsDir()
	if err != nil {
		return nil, err
	}
	dirs := []string{exports}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				dirs = append(dirs, p)
			}
		}
	}

	for i, d := range dirs {
		abs, err := filepath.Abs(filepath.Clean(d))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid allowed path: %v", err))
		}
		if isSymlink(abs) {
			if abs, err = filepath.EvalSymlinks(abs); err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
		}
		dirs[i] = abs
	}
	return dirs, nil
}

// isDirectlyInAllowedDir reports whether parentDir is itself one of the
// allowed directories. Subdirectories do not count.
func isDirectlyInAllowedDir(parentDir string, allowedDirs []string) bool {
	parentDir = filepath.Clean(parentDir)
	return slices.ContainsFunc(allowedDirs, func(dir string) bool {
		return parentDir == filepath.Clean(dir)
	})
}

// DefaultExportsDir returns the default exports directory (~/.lapak/exports).
func DefaultExportsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(homeDir, ".lapak", "exports"), nil
}

func hasExtension(path string, exts []string) bool {
	return slices.Contains(exts, strings.ToLower(filepath.Ext(path)))
}

// containsTraversal reports whether any component of path is "..".
// Forward slashes count as separators on every platform.
func containsTraversal(path string) bool {
	split := func(r rune) bool { return r == '/' || r == filepath.Separator }
	return slices.Contains(strings.FieldsFunc(path, split), "..")
}

// SanitizeForFilename turns a page or workspace name into a lowercase
// filename fragment. Separators, runs of dots and whitespace become single
// dashes; control characters are dropped. An empty result is "unnamed".
func SanitizeForFilename(s string) string {
	s = strings.ReplaceAll(s, "..", "-")
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || unicode.IsSpace(r):
			return '-'
		case unicode.IsControl(r):
			return -1
		}
		return unicode.ToLower(r)
	}, s)

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")
	if s == "" {
		return "unnamed"
	}
	return s
}
