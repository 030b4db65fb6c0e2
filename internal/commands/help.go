package commands

import (
	"fmt"

	"github.com/pixil98/go-zbot/internal/chat"
	"github.com/pixil98/go-zbot/internal/markup"
)

const (
	namesTemplate = `{{ .Names | join ", " }}`
	usageTemplate = "{{ .Usage | join \" \" }}"
)

// helpData is what command help templates see. Help strings refer to their
// params as {{ index .Args 0 }}, {{ index .Args 1 }} and so on.
type helpData struct {
	Names []string
	Usage []string
	Args  []string
}

// HelpTable lists every registered command with its arguments and details.
func (h *Handler) HelpTable() (*markup.Table, error) {
	t := &markup.Table{
		Caption: "Command list:",
		Header:  []string{"command", "arguments", "details"},
	}

	for _, c := range h.commands {
		data := helpData{Names: c.Names(), Usage: c.Usage(), Args: c.Usage()}

		names, err := ExpandTemplate(namesTemplate, data)
		if err != nil {
			return nil, fmt.Errorf("command %q: %w", c.Name, err)
		}
		usage, err := ExpandTemplate(usageTemplate, data)
		if err != nil {
			return nil, fmt.Errorf("command %q: %w", c.Name, err)
		}
		details, err := ExpandTemplate(c.Help, data)
		if err != nil {
			return nil, fmt.Errorf("command %q help: %w", c.Name, err)
		}

		t.Rows = append(t.Rows, []string{names, usage, details})
	}

	return t, nil
}

// Help renders HelpTable as a reply.
func (h *Handler) Help() (*chat.Reply, error) {
	t, err := h.HelpTable()
	if err != nil {
		return nil, err
	}

	out, err := t.HTML()
	if err != nil {
		return nil, err
	}
	return chat.HTML(out, t.PlainText()), nil
}
