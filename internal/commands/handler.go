package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pixil98/go-zbot/internal/chat"
)

// Fallback receives messages no command claimed. It returns a nil reply when
// it ignores the message too.
type Fallback func(ctx context.Context, msg chat.Message) (*chat.Reply, error)

type Handler struct {
	commands []*Command
	byName   map[string]*Command
	fallback Fallback
}

func NewHandler() *Handler {
	return &Handler{
		byName: make(map[string]*Command),
	}
}

// Register adds commands. Names and aliases are matched case-insensitively
// and must be unique.
func (h *Handler) Register(cmds ...*Command) error {
	for _, c := range cmds {
		if err := c.Validate(); err != nil {
			return err
		}

		for _, name := range c.Names() {
			key := strings.ToLower(name)
			if _, exists := h.byName[key]; exists {
				return fmt.Errorf("command %q already registered", name)
			}
			h.byName[key] = c
		}
		h.commands = append(h.commands, c)
	}
	return nil
}

func (h *Handler) SetFallback(f Fallback) {
	h.fallback = f
}

// Commands returns the registered commands in registration order.
func (h *Handler) Commands() []*Command {
	return h.commands
}

// Dispatch runs the command msg names. It returns a nil reply when the
// message is not addressed to any command. Argument problems and UserErrors
// become text replies; other errors are returned.
func (h *Handler) Dispatch(ctx context.Context, msg chat.Message) (*chat.Reply, error) {
	body := strings.TrimSpace(msg.Body)
	if body == "" {
		return nil, nil
	}

	cmd, line := h.match(body)
	if cmd == nil {
		if h.fallback == nil {
			return nil, nil
		}
		return userReply(h.fallback(ctx, msg))
	}

	args, err := cmd.parseArgs(line)
	if err != nil {
		return userReply(nil, err)
	}

	return userReply(cmd.Run(ctx, msg, args))
}

func (h *Handler) match(body string) (*Command, string) {
	for _, c := range h.commands {
		if c.Prefix && strings.HasPrefix(body, c.Name) {
			return c, body[len(c.Name):]
		}
	}

	name, line := nextWord(body)
	if c, ok := h.byName[strings.ToLower(name)]; ok && !c.Prefix {
		return c, line
	}
	return nil, ""
}

func userReply(r *chat.Reply, err error) (*chat.Reply, error) {
	var ue *UserError
	if errors.As(err, &ue) {
		return chat.Text(ue.Message), nil
	}
	return r, err
}
