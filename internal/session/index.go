package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/pixil98/go-zbot/internal/storage"
)

// Index maps a room to the game of its most recently completed interaction.
// Every change rewrites the whole file.
type Index struct {
	path string

	mu    sync.Mutex
	games map[string]string
}

func loadIndex(path string) (*Index, error) {
	idx := &Index{path: path, games: map[string]string{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session index: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &idx.games); err != nil {
			return nil, fmt.Errorf("parsing session index %s: %w", path, err)
		}
	}

	return idx, nil
}

// Get returns the active game of room.
func (i *Index) Get(room string) (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	g, ok := i.games[room]
	return g, ok
}

// Set records game as active in room and persists the index.
func (i *Index) Set(room, game string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	prev, had := i.games[room]
	i.games[room] = game

	if err := i.persist(); err != nil {
		if had {
			i.games[room] = prev
		} else {
			delete(i.games, room)
		}
		return err
	}
	return nil
}

func (i *Index) persist() error {
	data, err := json.MarshalIndent(i.games, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling session index: %w", err)
	}

	if err := storage.EnsureParent(i.path); err != nil {
		return err
	}
	if err := storage.WriteFileAtomic(i.path, data, 0644); err != nil {
		return fmt.Errorf("writing session index: %w", err)
	}
	return nil
}
