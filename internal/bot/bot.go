// Package bot is the command surface of the game bot. It owns the per-room
// state and runs every interaction against a fresh interpreter.
package bot

import (
	"context"
	"log/slog"

	"github.com/pixil98/go-zbot/internal/catalog"
	"github.com/pixil98/go-zbot/internal/chat"
	"github.com/pixil98/go-zbot/internal/commands"
	"github.com/pixil98/go-zbot/internal/interp"
	"github.com/pixil98/go-zbot/internal/markup"
	"github.com/pixil98/go-zbot/internal/saves"
	"github.com/pixil98/go-zbot/internal/session"
)

// DefaultCommandPrefix starts a message that is sent to the game.
const DefaultCommandPrefix = `\`

const genericFailure = "There was an error."

type BotOpt func(*Bot)

// WithCommandPrefix sets the prefix of messages that go to the game.
func WithCommandPrefix(prefix string) BotOpt {
	return func(b *Bot) {
		b.prefix = prefix
	}
}

type Bot struct {
	catalog    *catalog.Catalog
	supervisor *interp.Supervisor
	sessions   *session.Store
	saves      *saves.Namer
	tracker    *markup.Tracker

	prefix  string
	locks   *roomLocks
	direct  *directModes
	handler *commands.Handler
}

func New(cat *catalog.Catalog, sup *interp.Supervisor, sessions *session.Store, namer *saves.Namer, opts ...BotOpt) (*Bot, error) {
	b := &Bot{
		catalog:    cat,
		supervisor: sup,
		sessions:   sessions,
		saves:      namer,
		tracker:    markup.NewTracker(),
		prefix:     DefaultCommandPrefix,
		locks:      newRoomLocks(),
		direct:     newDirectModes(),
		handler:    commands.NewHandler(),
	}

	for _, opt := range opts {
		opt(b)
	}

	if err := b.registerCommands(); err != nil {
		return nil, err
	}

	return b, nil
}

// Handle answers one chat message. It returns nil when the message is not
// addressed to the bot. Failures become a single text reply.
func (b *Bot) Handle(ctx context.Context, msg chat.Message) *chat.Reply {
	r, err := b.handler.Dispatch(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "handling message", "room", msg.Room, "sender", msg.Sender, "body", msg.Body, "error", err)
		return chat.Text(genericFailure)
	}
	return r
}

// Commands returns the registered chat commands.
func (b *Bot) Commands() []*commands.Command {
	return b.handler.Commands()
}

// Prefix returns the prefix of messages that go to the game.
func (b *Bot) Prefix() string {
	return b.prefix
}
