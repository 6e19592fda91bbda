//go:build windows

package ops

import (
	"os"

	"github.com/hpungsan/lapak/internal/errors"
)

// openFileNoFollow creates the temp file an HTML export or workspace backup is
// written through. Windows has no O_NOFOLLOW; ValidatePath has already
// rejected symlinked paths.
func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}

// openFileNoFollowRead opens a backup, settings file or image for reading.
func openFileNoFollowRead(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(path)
		}
		return nil, err
	}
	return f, nil
}
