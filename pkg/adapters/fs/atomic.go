package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// TempFilePrefix is the prefix of the temporary files behind atomic writes.
// The loader never matches them: they carry no registered extension.
const TempFilePrefix = ".datastore-tmp-"

// writeFileAtomic replaces filename with data in one rename. Missing parent
// directories are created. On failure the target is left as it was and the
// temp file is removed.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	werr := tmp.Chmod(perm)
	if werr == nil {
		_, werr = tmp.Write(data)
	}
	if werr == nil {
		werr = tmp.Sync()
	}
	if werr = errors.Join(werr, tmp.Close()); werr != nil {
		return fmt.Errorf("write temp file: %w", werr)
	}

	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("replace %s: %w", filename, err)
	}
	return nil
}
