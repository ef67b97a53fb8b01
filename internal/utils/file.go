package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type CopyOptions struct {
	// PreserveTimes copies the source modification time onto the destination.
	PreserveTimes bool
}

// CopyFile copies src to dst byte for byte and returns the number of bytes
// written. The data is staged in a temp file next to dst and renamed into
// place, so dst is either the old file or the complete new one.
func CopyFile(src, dst string, opts CopyOptions) (int64, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return 0, err
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, srcFile)
	if err != nil {
		tmp.Close()
		return n, fmt.Errorf("copy %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return n, err
	}

	if err := os.Chmod(tmpPath, info.Mode().Perm()|0o200); err != nil {
		return n, err
	}

	if opts.PreserveTimes {
		mtime := info.ModTime()
		if err := os.Chtimes(tmpPath, mtime, mtime); err != nil {
			return n, err
		}
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return n, err
	}
	committed = true

	return n, nil
}
