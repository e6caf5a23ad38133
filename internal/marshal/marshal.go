package marshal

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Export writes v to path in the format implied by its extension. The write
// goes to a temp file in the same directory which is synced and renamed over
// path while an exclusive lock on <path>.lock is held, so readers see either
// the old content or the new content.
func Export(path string, v any) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	lock := NewFileLock(path)
	if err := lock.Lock(); err != nil {
		return err
	}
	defer func() {
		if uerr := lock.Unlock(); uerr != nil && err == nil {
			err = uerr
		}
	}()

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	format := FormatForPath(path)
	bw := bufio.NewWriter(tmp)
	if err = Encode(bw, format, v); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	if err = bw.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	slog.Debug("exported mapping",
		slog.String("path", path),
		slog.String("format", format.String()))
	return nil
}

// Import decodes the file at path into v, a pointer.
func Import(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	format := FormatForPath(path)
	if err := Decode(bufio.NewReader(f), format, v); err != nil {
		return fmt.Errorf("failed to decode %s as %s: %w", path, format, err)
	}
	return nil
}
