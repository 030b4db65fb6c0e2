// Package saves manages user-named snapshots, kept apart from the rolling
// session snapshot of a room.
package saves

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/pixil98/go-zbot/internal/storage"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

var (
	// ErrConflict is returned when a named save exists and overwrite was not requested.
	ErrConflict = errors.New("save file already exists")
	// ErrMissing is returned when a named save does not exist.
	ErrMissing = errors.New("save file does not exist")
)

// ValidationError reports a save name outside [A-Za-z0-9-]+.
type ValidationError struct {
	Name string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Filename '%s' should only contain a-z, A-Z, 0-9 or - ", e.Name)
}

// Validate fails with a *ValidationError unless name is a usable save name.
func Validate(name string) error {
	if !namePattern.MatchString(name) {
		return &ValidationError{Name: name}
	}
	return nil
}

// Entry is one listed save.
type Entry struct {
	Name    string
	ModTime time.Time
}

// Namer resolves named saves under <dir>/<escaped-room>/<game>/<name>.
type Namer struct {
	dir string
}

func NewNamer(dir string) *Namer {
	return &Namer{dir: dir}
}

func (n *Namer) dirFor(room, game string) string {
	return filepath.Join(n.dir, storage.EscapeSegment(room), game)
}

// Path returns the location of a named save, creating its parent directory.
func (n *Namer) Path(room, game, name string) (string, error) {
	if err := Validate(name); err != nil {
		return "", err
	}

	path := filepath.Join(n.dirFor(room, game), name)
	if err := storage.EnsureParent(path); err != nil {
		return "", err
	}
	return path, nil
}

func (n *Namer) Exists(room, game, name string) (bool, error) {
	path, err := n.Path(room, game, name)
	if err != nil {
		return false, err
	}
	return storage.Exists(path)
}

// List returns the saves of a room and game, oldest first.
func (n *Namer) List(room, game string) ([]Entry, error) {
	dir := n.dirFor(room, game)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating save directory: %w", err)
	}

	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading save directory: %w", err)
	}

	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		if de.IsDir() || Validate(de.Name()) != nil {
			continue
		}
		info, err := de.Info()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", de.Name(), err)
		}
		entries = append(entries, Entry{Name: de.Name(), ModTime: info.ModTime()})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ModTime.Equal(entries[j].ModTime) {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].ModTime.Before(entries[j].ModTime)
	})

	return entries, nil
}

// CopyInto stores snapshot as a named save. An existing save is replaced only
// when overwrite is set.
func (n *Namer) CopyInto(snapshot, room, game, name string, overwrite bool) (string, error) {
	path, err := n.Path(room, game, name)
	if err != nil {
		return "", err
	}

	if !overwrite {
		exists, err := storage.Exists(path)
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", path, err)
		}
		if exists {
			return "", fmt.Errorf("%s: %w", path, ErrConflict)
		}
	}

	if err := storage.CopyFile(snapshot, path); err != nil {
		return "", err
	}
	return path, nil
}

// CopyFrom copies a named save to dst.
func (n *Namer) CopyFrom(room, game, name, dst string) error {
	path, err := n.existing(room, game, name)
	if err != nil {
		return err
	}
	return storage.CopyFile(path, dst)
}

// Read returns the content of a named save.
func (n *Namer) Read(room, game, name string) ([]byte, error) {
	path, err := n.existing(room, game, name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func (n *Namer) existing(room, game, name string) (string, error) {
	path, err := n.Path(room, game, name)
	if err != nil {
		return "", err
	}

	exists, err := storage.Exists(path)
	if err != nil {
		return "", fmt.Errorf("checking %s: %w", path, err)
	}
	if !exists {
		return "", fmt.Errorf("%s: %w", path, ErrMissing)
	}
	return path, nil
}
