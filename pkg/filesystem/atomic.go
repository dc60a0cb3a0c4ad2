package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/GonxKZ/disksense64-sub000/pkg/logging"
	"github.com/GonxKZ/disksense64-sub000/pkg/must"
)

// atomicWriteTemporaryNamePrefix is the file name prefix used for
// intermediate temporary files created during atomic writes.
const atomicWriteTemporaryNamePrefix = ".disksense-tmp-atomic-write"

// WriteFileAtomic writes a file to disk atomically by writing to an
// intermediate temporary file in the same directory and swapping it into
// place with a rename, so that readers never observe a partially written
// file.
func WriteFileAtomic(path string, data []byte, permissions os.FileMode, logger *logging.Logger) error {
	temporary, err := os.CreateTemp(filepath.Dir(path), atomicWriteTemporaryNamePrefix)
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}

	if _, err = temporary.Write(data); err != nil {
		must.Close(temporary, logger)
		must.OSRemove(temporary.Name(), logger)
		return fmt.Errorf("unable to write data to temporary file: %w", err)
	}

	if err = temporary.Close(); err != nil {
		must.OSRemove(temporary.Name(), logger)
		return fmt.Errorf("unable to close temporary file: %w", err)
	}

	if err = os.Chmod(temporary.Name(), permissions); err != nil {
		must.OSRemove(temporary.Name(), logger)
		return fmt.Errorf("unable to change file permissions: %w", err)
	}

	if err = Rename(nil, temporary.Name(), nil, path); err != nil {
		must.OSRemove(temporary.Name(), logger)
		return fmt.Errorf("unable to rename file: %w", err)
	}

	return nil
}
