package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pixil98/go-zbot/internal/catalog"
	"github.com/pixil98/go-zbot/internal/chat"
	"github.com/pixil98/go-zbot/internal/interp"
	"github.com/pixil98/go-zbot/internal/markup"
	"github.com/pixil98/go-zbot/internal/saves"
)

// DownloadMimeType is the type of downloaded save files.
const DownloadMimeType = "application/octet-stream"

// ListGames lists the installed games by name.
func (b *Bot) ListGames() (*chat.Reply, error) {
	t := &markup.Table{Header: []string{"id", "name"}}
	for _, g := range b.catalog.Games() {
		t.Rows = append(t.Rows, []string{g.ID, g.Name})
	}
	return tableReply(t)
}

// Start begins a new session of gameID in room, replacing the current one.
func (b *Bot) Start(ctx context.Context, room, gameID string) (*chat.Reply, error) {
	g, err := b.game(gameID)
	if err != nil {
		return nil, err
	}

	return b.play(ctx, room, fixedGame(g), func(_ context.Context, _ *interp.Process, intro string) (string, *chat.Reply, error) {
		return intro, nil, nil
	})
}

// Continue resumes the last session of gameID played in room.
func (b *Bot) Continue(ctx context.Context, room, gameID string) (*chat.Reply, error) {
	g, err := b.game(gameID)
	if err != nil {
		return nil, err
	}

	return b.play(ctx, room, fixedGame(g), func(ctx context.Context, p *interp.Process, _ string) (string, *chat.Reply, error) {
		out, found, err := b.sessions.Restore(ctx, p, room, g.ID)
		if err != nil {
			return "", nil, err
		}
		if !found {
			return "", noSessionFound(g.ID), nil
		}
		return out, nil, nil
	})
}

// Load replaces the session of room with the named save of gameID.
func (b *Bot) Load(ctx context.Context, room, gameID, name string) (*chat.Reply, error) {
	g, err := b.game(gameID)
	if err != nil {
		return nil, err
	}

	exists, err := b.saves.Exists(room, g.ID, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return chat.Textf("Save file '%s' doesn't exist", name), nil
	}

	return b.play(ctx, room, fixedGame(g), func(ctx context.Context, p *interp.Process, _ string) (string, *chat.Reply, error) {
		out, err := b.sessions.LoadNamed(ctx, p, room, g.ID, name)
		if errors.Is(err, saves.ErrMissing) {
			return "", chat.Textf("Save file '%s' doesn't exist", name), nil
		}
		return out, nil, err
	})
}

// Command sends text to the active game of room. The active game is looked
// up once the room is locked.
func (b *Bot) Command(ctx context.Context, room, text string) (*chat.Reply, error) {
	var g *catalog.Game
	active := func() (*catalog.Game, *chat.Reply, error) {
		gameID, ok := b.sessions.Active(room)
		if !ok {
			return nil, chat.Text("No active session, use !zstart to start a game"), nil
		}

		var err error
		g, err = b.game(gameID)
		return g, nil, err
	}

	return b.play(ctx, room, active, func(ctx context.Context, p *interp.Process, _ string) (string, *chat.Reply, error) {
		if _, _, err := b.sessions.Restore(ctx, p, room, g.ID); err != nil {
			return "", nil, err
		}

		out, err := p.Send(ctx, text+"\n")
		if err != nil {
			return "", nil, err
		}

		// Answers a pending clarifying question so the save can go through.
		// The interpreter does not count it as a move.
		if _, err := p.Send(ctx, "#\n"); err != nil && !errors.Is(err, interp.ErrNoResponse) {
			return "", nil, err
		}

		return out, nil, nil
	})
}

// SaveAs copies the session of room to a named save of its active game.
func (b *Bot) SaveAs(ctx context.Context, room, name string, overwrite bool) (*chat.Reply, error) {
	release, err := b.locks.acquire(ctx, room)
	if err != nil {
		return nil, err
	}
	defer release()

	gameID, ok := b.sessions.Active(room)
	if !ok {
		return chat.Text("No session to save"), nil
	}

	err = b.sessions.SaveNamed(ctx, room, gameID, name, overwrite)
	if errors.Is(err, saves.ErrConflict) {
		return chat.Textf("Save file '%s' exists, pick another one or specify 'overwrite' as last argument", name), nil
	}
	if err != nil {
		return nil, err
	}

	return chat.Textf("Saved to file '%s' for game '%s'", name, gameID), nil
}

// ListSaves lists the named saves of gameID in room, oldest first.
func (b *Bot) ListSaves(room, gameID string) (*chat.Reply, error) {
	entries, err := b.saves.List(room, gameID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return chat.Textf("No savegames for '%s' in this room", gameID), nil
	}

	t := &markup.Table{}
	for _, e := range entries {
		t.Rows = append(t.Rows, []string{isoTimestamp(e.ModTime), e.Name})
	}
	return tableReply(t)
}

// Download returns a named save as a file.
func (b *Bot) Download(room, gameID, name string) (*chat.Reply, error) {
	data, err := b.saves.Read(room, gameID, name)
	if errors.Is(err, saves.ErrMissing) {
		return chat.Textf("Save file '%s' doesn't exist", name), nil
	}
	if err != nil {
		return nil, err
	}

	return chat.File(gameID+"-"+name, DownloadMimeType, data), nil
}

// SetDirect turns direct mode on or off for sender in room.
func (b *Bot) SetDirect(room, sender string, on bool) *chat.Reply {
	b.direct.set(room, sender, on)
	if on {
		return chat.Text("Direct mode enabled")
	}
	return chat.Textf("Direct mode disabled, '%s' is required for commands", b.prefix)
}

// Help lists the chat commands.
func (b *Bot) Help() (*chat.Reply, error) {
	return b.handler.Help()
}

func noSessionFound(gameID string) *chat.Reply {
	return chat.Textf("No session found for game-id '%s'", gameID)
}

func tableReply(t *markup.Table) (*chat.Reply, error) {
	out, err := t.HTML()
	if err != nil {
		return nil, fmt.Errorf("rendering table: %w", err)
	}
	return chat.HTML(out, t.PlainText()), nil
}

// isoTimestamp formats t in local time with a space separator, adding
// microseconds only when there are any.
func isoTimestamp(t time.Time) string {
	t = t.Local()
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format("2006-01-02 15:04:05")
	}
	return t.Format("2006-01-02 15:04:05.000000")
}
