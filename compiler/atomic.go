package compiler

import (
	"os"
	"path/filepath"
)

// tempFile abstracts an os.File for testability.
type tempFile interface {
	Name() string
	Write([]byte) (int, error)
	Sync() error
	Close() error
}

// File operation hooks, overridden in tests.
var (
	createTempFile = func(dir, pattern string) (tempFile, error) { return os.CreateTemp(dir, pattern) }
	chmodFile      = os.Chmod
	renameFile     = os.Rename
	removeFile     = os.Remove
)

// writeFileAtomic publishes a cache artifact at targetPath. Several kernel
// processes may warm the same cache file at once while others boot from it,
// so the bytes go to a synced temporary file in the cache directory that is
// then renamed over targetPath. A booting kernel reads either the previous
// artifact or a complete new one, never a truncated one. Concurrent warmers
// each publish a whole artifact and the last rename wins.
func writeFileAtomic(targetPath string, data []byte, perm os.FileMode) (err error) {
	tmp, err := createTempFile(filepath.Dir(targetPath), filepath.Base(targetPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			_ = removeFile(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = chmodFile(tmpPath, perm); err != nil {
		return err
	}
	return renameFile(tmpPath, targetPath)
}
