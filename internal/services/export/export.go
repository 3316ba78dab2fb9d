// Package export writes rendered trees to files.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/temirov/dirtree/internal/types"
)

const (
	// DefaultBaseName is the file name offered when the caller gives only a directory.
	DefaultBaseName = "directory_tree"

	// LockSuffix is appended to the target path to name its lock file.
	LockSuffix        = ".lock"
	temporaryPattern  = ".dirtree-*"
	exportPermissions = 0o644

	errorLockFormat   = "lock %s: %w"
	errorCreateFormat = "create directory %s: %w"
	errorWriteFormat  = "write %s: %w"
	errorExistsFormat = "%w: %s"
)

// ErrExists reports a target that already exists when overwriting is not allowed.
var ErrExists = errors.New("file already exists")

// DefaultFileName returns the suggested export file name for format.
func DefaultFileName(format types.OutputFormat) string {
	return DefaultBaseName + format.FileExtension()
}

// ResolvePath turns a user-supplied target into a file path. An empty target or
// an existing directory receives the default file name for format, and a target
// without an extension receives the format's extension.
func ResolvePath(target string, format types.OutputFormat) string {
	if strings.TrimSpace(target) == "" {
		return DefaultFileName(format)
	}
	if info, statError := os.Stat(target); statError == nil && info.IsDir() {
		return filepath.Join(target, DefaultFileName(format))
	}
	if filepath.Ext(target) == "" {
		return target + format.FileExtension()
	}
	return target
}

// WriteFile atomically replaces path with data. A sibling lock file serializes
// concurrent writers, including writers in other processes.
func WriteFile(path string, data []byte, overwrite bool) error {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf(errorCreateFormat, directory, err)
	}
	lockPath := path + LockSuffix
	fileLock := flock.New(lockPath)
	if err := fileLock.Lock(); err != nil {
		return fmt.Errorf(errorLockFormat, path, err)
	}
	defer fileLock.Unlock()

	if !overwrite {
		if _, statError := os.Stat(path); statError == nil {
			return fmt.Errorf(errorExistsFormat, ErrExists, path)
		}
	}
	if err := atomicWrite(directory, path, data); err != nil {
		return fmt.Errorf(errorWriteFormat, path, err)
	}
	return nil
}

func atomicWrite(directory string, path string, data []byte) error {
	temporaryFile, err := os.CreateTemp(directory, temporaryPattern)
	if err != nil {
		return err
	}
	temporaryPath := temporaryFile.Name()
	committed := false
	defer func() {
		if !committed {
			temporaryFile.Close()
			os.Remove(temporaryPath)
		}
	}()

	if _, err := temporaryFile.Write(data); err != nil {
		return err
	}
	if err := temporaryFile.Sync(); err != nil {
		return err
	}
	if err := temporaryFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(temporaryPath, exportPermissions); err != nil {
		return err
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		return err
	}
	committed = true
	return nil
}
