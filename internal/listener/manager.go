package listener

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pixil98/go-zbot/internal"
	"github.com/pixil98/go-zbot/internal/chat"
	"github.com/pixil98/go-zbot/internal/display"
)

const (
	quitCommand = "!quit"
	roomCommand = "!room"

	// RoomPrefix namespaces console rooms so they never share a room with a
	// chat network.
	RoomPrefix = "console:"
)

// Handler answers one chat message. The bot satisfies it.
type Handler interface {
	Handle(ctx context.Context, msg chat.Message) *chat.Reply
}

// ConnectionManager runs console sessions. A console user picks a name and a
// room, then every line they type is handled as a chat message in that room.
type ConnectionManager struct {
	handler Handler
	width   int
}

func NewConnectionManager(h Handler) *ConnectionManager {
	return &ConnectionManager{
		handler: h,
		width:   display.DefaultWidth,
	}
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	m.AcceptUser(ctx, conn, "")
}

// AcceptUser runs a session for a sender the transport already knows.
func (m *ConnectionManager) AcceptUser(ctx context.Context, conn io.ReadWriter, sender string) {
	if err := m.RunSession(ctx, conn, sender); err != nil {
		slog.WarnContext(ctx, "console session", "sender", sender, "error", err)
	}
}

// RunSession plays one console session until the user quits, the input ends
// or ctx is canceled. An empty or unusable sender is asked for.
func (m *ConnectionManager) RunSession(ctx context.Context, conn io.ReadWriter, sender string) error {
	r := bufio.NewReader(conn)

	if ok, _ := validWord(sender); !ok {
		var err error
		sender, err = internal.Prompt(r, conn, "Name: ", internal.WithValidator(validWord), internal.WithMaxTries(3))
		if err != nil {
			return ignoreEOF(err)
		}
	}
	room, err := internal.Prompt(r, conn, "Room: ", internal.WithValidator(validWord), internal.WithMaxTries(3))
	if err != nil {
		return ignoreEOF(err)
	}

	slog.InfoContext(ctx, "console session started", "sender", sender, "room", room)
	m.printf(conn, "Joined room '%s'. Type !zhelp for commands, %s to leave.\n", room, quitCommand)

	for ctx.Err() == nil {
		if _, err := io.WriteString(conn, "> "); err != nil {
			return err
		}

		line, err := internal.ReadLine(r)
		if err != nil {
			return ignoreEOF(err)
		}
		line = strings.TrimSpace(line)

		switch word, rest := splitWord(line); word {
		case "":
			continue
		case quitCommand:
			ok, err := internal.PromptYN(r, conn, "Really leave? ")
			if err != nil {
				return ignoreEOF(err)
			}
			if ok {
				slog.InfoContext(ctx, "console session ended", "sender", sender, "room", room)
				return nil
			}
		case roomCommand:
			if ok, msg := validWord(rest); !ok {
				m.printf(conn, "%s", msg)
				continue
			}
			room = rest
			m.printf(conn, "Joined room '%s'.\n", room)
		default:
			reply := m.handler.Handle(ctx, chat.Message{Room: RoomPrefix + room, Sender: sender, Body: line})
			if err := m.write(conn, reply); err != nil {
				return err
			}
		}
	}

	return nil
}

func (m *ConnectionManager) write(w io.Writer, reply *chat.Reply) error {
	if reply == nil {
		return nil
	}
	_, err := io.WriteString(w, display.Lines(display.WrapWidth(reply.String(), m.width)))
	return err
}

func (m *ConnectionManager) printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

func validWord(s string) (bool, string) {
	switch {
	case s == "":
		return false, "a value is required\n"
	case strings.ContainsAny(s, " \t"):
		return false, "spaces are not allowed\n"
	default:
		return true, ""
	}
}

func splitWord(line string) (string, string) {
	word, rest, _ := strings.Cut(line, " ")
	return strings.ToLower(word), strings.TrimSpace(rest)
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
