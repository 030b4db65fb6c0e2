package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
)

var unsafeSegment = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// EscapeSegment makes s usable as a single path segment by replacing every
// character outside [A-Za-z0-9._-] with '_'. Empty, "." and ".." segments
// become underscores. Distinct inputs may collide.
func EscapeSegment(s string) string {
	switch s {
	case "", ".":
		return "_"
	case "..":
		return "__"
	}
	return unsafeSegment.ReplaceAllString(s, "_")
}

// EnsureParent creates the parent directory of path.
func EnsureParent(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	return nil
}

// Exists reports whether path names an existing file.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// WriteFileAtomic writes data to a temp file then renames it to the target path.
// This prevents partial or empty files if the process is interrupted.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		RemoveQuietly(tmp)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// CopyFile copies src next to dst and renames it into place, so dst is
// either the old file or the complete new one.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	if err := EnsureParent(dst); err != nil {
		return err
	}

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	_, err = io.Copy(out, in)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		RemoveQuietly(tmp)
		return fmt.Errorf("copying to temp file: %w", err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		RemoveQuietly(tmp)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// MoveFile renames src to dst, falling back to copy-then-rename when the two
// paths live on different filesystems.
func MoveFile(src, dst string) error {
	if err := EnsureParent(dst); err != nil {
		return err
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := CopyFile(src, dst); err != nil {
		return err
	}
	RemoveQuietly(src)
	return nil
}

// RemoveQuietly removes path, logging failures other than the file being gone.
func RemoveQuietly(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to remove file", "path", path, "error", err)
	}
}
