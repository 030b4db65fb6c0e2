// Package session keeps the rolling snapshot of every room and game, and the
// index of which game each room is playing.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pixil98/go-zbot/internal/interp"
	"github.com/pixil98/go-zbot/internal/saves"
	"github.com/pixil98/go-zbot/internal/storage"
)

const (
	// IndexFile is the name of the room index inside the session directory.
	IndexFile = "sessions"
	// ScratchDir is the default scratch directory inside the session directory.
	ScratchDir = ".tmp"
	// ScratchPrefix starts the name of every scratch file.
	ScratchPrefix = "zbot-"
)

// ErrSaveFailed is returned when the interpreter produced an empty save. The
// previous snapshot is left in place.
var ErrSaveFailed = errors.New("interpreter did not write a save file")

// Interpreter is the part of a running interpreter the store needs.
type Interpreter interface {
	Send(ctx context.Context, text string) (string, error)
}

type Store struct {
	sessionDir string
	tempDir    string
	saves      *saves.Namer
	index      *Index
}

// NewStore opens the session directory and loads its index. Snapshots are
// staged in tempDir, which should share a filesystem with sessionDir.
func NewStore(sessionDir, tempDir string, namer *saves.Namer) (*Store, error) {
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}

	idx, err := loadIndex(filepath.Join(sessionDir, IndexFile))
	if err != nil {
		return nil, err
	}

	return &Store{
		sessionDir: sessionDir,
		tempDir:    tempDir,
		saves:      namer,
		index:      idx,
	}, nil
}

// Active returns the game most recently played to completion in room.
func (s *Store) Active(room string) (string, bool) {
	return s.index.Get(room)
}

// SnapshotPath returns the session snapshot path of room and game, creating
// its parent directory.
func (s *Store) SnapshotPath(room, game string) (string, error) {
	path := filepath.Join(s.sessionDir, RoomSegment(room), game)
	if err := storage.EnsureParent(path); err != nil {
		return "", err
	}
	return path, nil
}

// Save has the interpreter write a fresh snapshot and makes it the session
// snapshot of room and game. The room index is updated only on success.
func (s *Store) Save(ctx context.Context, p Interpreter, room, game string) error {
	snapshot, err := s.SnapshotPath(room, game)
	if err != nil {
		return err
	}

	tmp := s.tempPath()
	defer storage.RemoveQuietly(tmp)

	// The interpreter may be silent after writing the file.
	_, err = p.Send(ctx, "save\n"+tmp+"\n")
	if err != nil && !errors.Is(err, interp.ErrNoResponse) {
		return fmt.Errorf("saving session: %w", err)
	}

	info, err := os.Stat(tmp)
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.Size() == 0) {
		slog.WarnContext(ctx, "interpreter produced an empty save", "room", room, "game", game)
		return ErrSaveFailed
	}
	if err != nil {
		return fmt.Errorf("checking save file: %w", err)
	}

	if err := storage.MoveFile(tmp, snapshot); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	if err := s.index.Set(room, game); err != nil {
		return err
	}

	slog.InfoContext(ctx, "saved session", "room", room, "game", game, "path", snapshot)
	return nil
}

// Restore loads the session snapshot of room and game into the interpreter
// and returns its output. found is false when there is no snapshot.
func (s *Store) Restore(ctx context.Context, p Interpreter, room, game string) (out string, found bool, err error) {
	snapshot, err := s.SnapshotPath(room, game)
	if err != nil {
		return "", false, err
	}

	exists, err := storage.Exists(snapshot)
	if err != nil {
		return "", false, fmt.Errorf("checking snapshot: %w", err)
	}
	if !exists {
		return "", false, nil
	}

	tmp := s.tempPath()
	defer storage.RemoveQuietly(tmp)

	if err := storage.CopyFile(snapshot, tmp); err != nil {
		return "", true, fmt.Errorf("staging snapshot: %w", err)
	}

	out, err = s.restore(ctx, p, tmp)
	if err != nil {
		return out, true, err
	}

	slog.InfoContext(ctx, "restored session", "room", room, "game", game, "path", snapshot)
	return out, true, nil
}

// LoadNamed loads a named save into the interpreter. The room index is left
// alone; the next successful Save records the game.
func (s *Store) LoadNamed(ctx context.Context, p Interpreter, room, game, name string) (string, error) {
	tmp := s.tempPath()
	defer storage.RemoveQuietly(tmp)

	if err := s.saves.CopyFrom(room, game, name, tmp); err != nil {
		return "", err
	}

	out, err := s.restore(ctx, p, tmp)
	if err != nil {
		return out, err
	}

	slog.InfoContext(ctx, "loaded named save", "room", room, "game", game, "name", name)
	return out, nil
}

// SaveNamed copies the session snapshot of room and game to a named save.
func (s *Store) SaveNamed(ctx context.Context, room, game, name string, overwrite bool) error {
	snapshot, err := s.SnapshotPath(room, game)
	if err != nil {
		return err
	}

	path, err := s.saves.CopyInto(snapshot, room, game, name, overwrite)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "wrote named save", "room", room, "game", game, "path", path)
	return nil
}

func (s *Store) restore(ctx context.Context, p Interpreter, path string) (string, error) {
	out, err := p.Send(ctx, "restore\n"+path+"\n")
	if err != nil {
		return out, fmt.Errorf("restoring session: %w", err)
	}
	return out, nil
}

func (s *Store) tempPath() string {
	return filepath.Join(s.tempDir, ScratchPrefix+uuid.NewString())
}

// RoomSegment is the directory name of room inside the session directory.
// Names that would clash with the index or the scratch directory get a '~'
// prefix, which escaping never produces.
func RoomSegment(room string) string {
	seg := storage.EscapeSegment(room)
	switch seg {
	case IndexFile, ScratchDir:
		return "~" + seg
	}
	return seg
}

// IsScratchFile reports whether name was created by a store as scratch space.
func IsScratchFile(name string) bool {
	id, ok := strings.CutPrefix(name, ScratchPrefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
