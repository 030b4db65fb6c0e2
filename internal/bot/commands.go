package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixil98/go-zbot/internal/chat"
	"github.com/pixil98/go-zbot/internal/commands"
	"github.com/pixil98/go-zbot/internal/saves"
)

func (b *Bot) registerCommands() error {
	gameID := commands.Param{Name: "game-id", Validate: b.catalog.ValidateID}
	name := commands.Param{Name: "name", Validate: saves.Validate}

	err := b.handler.Register(
		&commands.Command{
			Name:    "!zhelp",
			Aliases: []string{"!zh"},
			Help:    "show help",
			Run: func(context.Context, chat.Message, commands.Args) (*chat.Reply, error) {
				return b.Help()
			},
		},
		&commands.Command{
			Name: "!zlist",
			Help: "list all installed games and their IDs",
			Run: func(context.Context, chat.Message, commands.Args) (*chat.Reply, error) {
				return b.ListGames()
			},
		},
		&commands.Command{
			Name:   "!zstart",
			Params: []commands.Param{gameID},
			Help:   "start a new session of game {{ index .Args 0 }}, replaces the current session",
			Run: func(ctx context.Context, msg chat.Message, args commands.Args) (*chat.Reply, error) {
				return b.Start(ctx, msg.Room, args["game-id"])
			},
		},
		&commands.Command{
			Name:    "!zsave",
			Aliases: []string{"!zs"},
			Params: []commands.Param{
				name,
				{Name: "overwrite", Optional: true, Validate: validateOverwrite},
			},
			Help: "save current session to {{ index .Args 0 }}, if it already exists, then {{ index .Args 1 }} must be specified",
			Run: func(ctx context.Context, msg chat.Message, args commands.Args) (*chat.Reply, error) {
				_, overwrite := args["overwrite"]
				return b.SaveAs(ctx, msg.Room, args["name"], overwrite)
			},
		},
		&commands.Command{
			Name:    "!zload",
			Aliases: []string{"!zl"},
			Params:  []commands.Param{gameID, name},
			Help:    "load a new save game of game {{ index .Args 0 }}, replacing the current session",
			Run: func(ctx context.Context, msg chat.Message, args commands.Args) (*chat.Reply, error) {
				return b.Load(ctx, msg.Room, args["game-id"], args["name"])
			},
		},
		&commands.Command{
			Name:    "!zlistsaves",
			Aliases: []string{"!zls"},
			Params:  []commands.Param{gameID},
			Help:    "list saved games for game {{ index .Args 0 }}",
			Run: func(_ context.Context, msg chat.Message, args commands.Args) (*chat.Reply, error) {
				return b.ListSaves(msg.Room, args["game-id"])
			},
		},
		&commands.Command{
			Name:    "!zdownload",
			Aliases: []string{"!zd"},
			Params:  []commands.Param{gameID, name},
			Help:    "download savegame {{ index .Args 1 }} for game {{ index .Args 0 }}",
			Run: func(_ context.Context, msg chat.Message, args commands.Args) (*chat.Reply, error) {
				return b.Download(msg.Room, args["game-id"], args["name"])
			},
		},
		&commands.Command{
			Name:    "!zcontinue",
			Aliases: []string{"!zc"},
			Params:  []commands.Param{gameID},
			Help:    "continue the last session of game {{ index .Args 0 }} that was played, if there is one",
			Run: func(ctx context.Context, msg chat.Message, args commands.Args) (*chat.Reply, error) {
				return b.Continue(ctx, msg.Room, args["game-id"])
			},
		},
		&commands.Command{
			Name:   "!zdirect",
			Params: []commands.Param{{Name: "mode", Validate: validateDirectMode}},
			Help:   fmt.Sprintf("set direct mode for yourself to <on> or <off>, if it is on, then the '%s' prefix is not needed", b.prefix),
			Run: func(_ context.Context, msg chat.Message, args commands.Args) (*chat.Reply, error) {
				return b.SetDirect(msg.Room, msg.Sender, strings.EqualFold(args["mode"], "on")), nil
			},
		},
		&commands.Command{
			Name:   b.prefix,
			Prefix: true,
			Params: []commands.Param{{Name: "command", Rest: true}},
			Help:   fmt.Sprintf("send commands to the game itself, e.g.: %slook around", b.prefix),
			Run: func(ctx context.Context, msg chat.Message, args commands.Args) (*chat.Reply, error) {
				return b.Command(ctx, msg.Room, args["command"])
			},
		},
	)
	if err != nil {
		return fmt.Errorf("registering commands: %w", err)
	}

	b.handler.SetFallback(b.directCommand)
	return nil
}

// directCommand sends plain messages of senders in direct mode to the game.
func (b *Bot) directCommand(ctx context.Context, msg chat.Message) (*chat.Reply, error) {
	body := strings.TrimSpace(msg.Body)
	if strings.HasPrefix(body, b.prefix) || strings.HasPrefix(body, "!") {
		return nil, nil
	}
	if !b.direct.enabled(msg.Room, msg.Sender) {
		return nil, nil
	}
	return b.Command(ctx, msg.Room, body)
}

func validateOverwrite(raw string) error {
	if !strings.EqualFold(raw, "overwrite") {
		return fmt.Errorf("invalid value '%s', only 'overwrite' is accepted", raw)
	}
	return nil
}

func validateDirectMode(raw string) error {
	switch strings.ToLower(raw) {
	case "on", "off":
		return nil
	}
	return fmt.Errorf("invalid value '%s', only 'on' or 'off' are accepted", raw)
}
