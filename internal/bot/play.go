package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-zbot/internal/catalog"
	"github.com/pixil98/go-zbot/internal/chat"
	"github.com/pixil98/go-zbot/internal/interp"
	"github.com/pixil98/go-zbot/internal/markup"
	"github.com/pixil98/go-zbot/internal/session"
)

// step is the part of an interaction between waking the interpreter and
// saving the session. intro is the output of the wake-up line. A nil reply
// means out should be rendered and the session saved.
type step func(ctx context.Context, p *interp.Process, intro string) (out string, reply *chat.Reply, err error)

// resolver picks the game of an interaction once the room is locked. A
// non-nil reply ends the interaction before anything is spawned.
type resolver func() (*catalog.Game, *chat.Reply, error)

func fixedGame(g *catalog.Game) resolver {
	return func() (*catalog.Game, *chat.Reply, error) {
		return g, nil, nil
	}
}

// play runs one interaction in room: spawn, startup input, an empty line,
// then step, then the session save. The room is locked and the interpreter is
// killed on every path. The status shown is remembered only when the reply
// is delivered.
func (b *Bot) play(ctx context.Context, room string, resolve resolver, fn step) (*chat.Reply, error) {
	release, err := b.locks.acquire(ctx, room)
	if err != nil {
		return nil, err
	}
	defer release()

	g, reply, err := resolve()
	if err != nil || reply != nil {
		return reply, err
	}

	err = b.supervisor.Run(ctx, g, func(p *interp.Process) error {
		if input := g.StartupInput(); input != "" {
			if _, err := p.Send(ctx, input); err != nil && !errors.Is(err, interp.ErrNoResponse) {
				return fmt.Errorf("sending startup input: %w", err)
			}
		}

		intro, err := p.Send(ctx, "\n")
		if err != nil && !errors.Is(err, interp.ErrNoResponse) {
			return fmt.Errorf("waking interpreter: %w", err)
		}

		out, r, err := fn(ctx, p, intro)
		if err != nil {
			return err
		}
		if r != nil {
			reply = r
			return nil
		}

		rendered, status, err := b.render(room, out)
		if err != nil {
			return err
		}

		if err := b.sessions.Save(ctx, p, room, g.ID); err != nil {
			if !errors.Is(err, session.ErrSaveFailed) {
				return err
			}
			slog.WarnContext(ctx, "session not saved, previous snapshot kept", "room", room, "game", g.ID)
		}

		b.tracker.Commit(room, status)
		reply = rendered
		return nil
	})

	var le *interp.LaunchError
	switch {
	case errors.As(err, &le):
		slog.ErrorContext(ctx, "interpreter failed to start", "room", room, "game", g.ID, "error", err)
		return chat.Text("The game could not be started."), nil
	case errors.Is(err, interp.ErrNoResponse):
		slog.WarnContext(ctx, "interpreter did not respond", "room", room, "game", g.ID)
		return chat.Text("The game did not respond in time."), nil
	case err != nil:
		return nil, err
	}

	return reply, nil
}

func (b *Bot) render(room, out string) (*chat.Reply, markup.Status, error) {
	doc, status := b.tracker.Convert(room, out)

	html, err := doc.HTML()
	if err != nil {
		return nil, status, err
	}
	return chat.HTML(html, doc.PlainText()), status, nil
}

func (b *Bot) game(id string) (*catalog.Game, error) {
	g, ok := b.catalog.Get(id)
	if !ok {
		return nil, fmt.Errorf("unknown game-id '%s'", id)
	}
	return g, nil
}
