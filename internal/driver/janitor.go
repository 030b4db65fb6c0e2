package driver

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pixil98/go-zbot/internal/storage"
)

const DefaultMaxAge = 15 * time.Minute

// Janitor removes files left in a scratch directory by interactions that
// were cut short, such as a killed process or a crash mid-save.
type Janitor struct {
	dir    string
	maxAge time.Duration
	match  func(name string) bool
	now    func() time.Time
}

// NewJanitor sweeps dir of files whose name satisfies match. Everything else
// in dir is left alone.
func NewJanitor(dir string, maxAge time.Duration, match func(name string) bool) *Janitor {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Janitor{
		dir:    dir,
		maxAge: maxAge,
		match:  match,
		now:    time.Now,
	}
}

// Tick removes matching regular files older than the max age. Failures are
// logged so one bad file never stops the driver.
func (j *Janitor) Tick(ctx context.Context) error {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.WarnContext(ctx, "reading scratch directory", "dir", j.dir, "error", err)
		}
		return nil
	}

	cutoff := j.now().Add(-j.maxAge)
	for _, e := range entries {
		if !e.Type().IsRegular() || !j.match(e.Name()) {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(j.dir, e.Name())
		slog.DebugContext(ctx, "removing stale scratch file", "path", path, "modified", info.ModTime())
		storage.RemoveQuietly(path)
	}

	return nil
}
