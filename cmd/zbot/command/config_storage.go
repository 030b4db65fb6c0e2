package command

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-zbot/internal/saves"
	"github.com/pixil98/go-zbot/internal/session"
)

type StorageConfig struct {
	SessionDir string `json:"session_dir"`
	SaveDir    string `json:"save_dir"`
	TempDir    string `json:"temp_dir"`
	GamesPath  string `json:"games_path"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()

	if c.SessionDir == "" {
		el.Add(fmt.Errorf("storage: session_dir is required"))
	}
	if c.SaveDir == "" {
		el.Add(fmt.Errorf("storage: save_dir is required"))
	}
	if c.TempDir != "" {
		el.Add(c.validateTempDir())
	}
	if c.GamesPath != "" {
		if _, err := os.Stat(c.GamesPath); err != nil {
			el.Add(fmt.Errorf("storage: invalid games_path %q: %w", c.GamesPath, err))
		}
	}

	return el.Err()
}

// validateTempDir keeps the scratch directory apart from the snapshots and
// saves, since the janitor deletes old files in it.
func (c *StorageConfig) validateTempDir() error {
	temp := filepath.Clean(c.TempDir)
	if c.SaveDir != "" && temp == filepath.Clean(c.SaveDir) {
		return fmt.Errorf("storage: temp_dir must differ from save_dir")
	}
	if c.SessionDir == "" {
		return nil
	}

	rel, err := filepath.Rel(filepath.Clean(c.SessionDir), temp)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	if rel == "." {
		return fmt.Errorf("storage: temp_dir must differ from session_dir")
	}
	if rel != session.ScratchDir {
		return fmt.Errorf("storage: temp_dir inside session_dir must be %q", filepath.Join(c.SessionDir, session.ScratchDir))
	}
	return nil
}

// ScratchDir is where snapshots are staged. It defaults to a directory inside
// session_dir so a finished snapshot is moved with a rename.
func (c *StorageConfig) ScratchDir() string {
	if c.TempDir != "" {
		return c.TempDir
	}
	return filepath.Join(c.SessionDir, session.ScratchDir)
}

func (c *StorageConfig) BuildNamer() *saves.Namer {
	return saves.NewNamer(c.SaveDir)
}

func (c *StorageConfig) BuildSessionStore(namer *saves.Namer) (*session.Store, error) {
	s, err := session.NewStore(c.SessionDir, c.ScratchDir(), namer)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}
	return s, nil
}
