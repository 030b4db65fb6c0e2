package commands

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/pixil98/go-zbot/internal/chat"
)

// Validator checks one raw argument. The returned error text is shown to the
// user after "Bad argument '<name>': ".
type Validator func(raw string) error

// Param is a positional argument.
type Param struct {
	Name     string
	Optional bool
	Rest     bool // captures the remainder of the line, spaces included
	Validate Validator
}

// Args holds the raw values of the parsed parameters by name.
type Args map[string]string

// Func runs a command for one message.
type Func func(ctx context.Context, msg chat.Message, args Args) (*chat.Reply, error)

// Command is a named, aliased chat command. A Prefix command matches any
// message starting with its name, with no separating space required.
type Command struct {
	Name    string
	Aliases []string
	Params  []Param
	Prefix  bool
	Help    string
	Run     Func
}

func (c *Command) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("command name not set")
	}
	if c.Run == nil {
		return fmt.Errorf("command %q: run func not set", c.Name)
	}
	if c.Prefix && len(c.Aliases) > 0 {
		return fmt.Errorf("command %q: prefix commands cannot have aliases", c.Name)
	}

	optional := false
	for i, p := range c.Params {
		if p.Name == "" {
			return fmt.Errorf("command %q: param %d: name is required", c.Name, i)
		}
		if p.Rest && i != len(c.Params)-1 {
			return fmt.Errorf("command %q: param %q: only the last param can be rest", c.Name, p.Name)
		}
		if optional && !p.Optional {
			return fmt.Errorf("command %q: param %q: required param after optional one", c.Name, p.Name)
		}
		optional = optional || p.Optional
	}

	return nil
}

// Names returns the name followed by the aliases.
func (c *Command) Names() []string {
	return append([]string{c.Name}, c.Aliases...)
}

// Usage renders each param as <name> or [name].
func (c *Command) Usage() []string {
	usage := make([]string, 0, len(c.Params))
	for _, p := range c.Params {
		if p.Optional {
			usage = append(usage, "["+p.Name+"]")
		} else {
			usage = append(usage, "<"+p.Name+">")
		}
	}
	return usage
}

// parseArgs splits line into the params of c and validates each value.
func (c *Command) parseArgs(line string) (Args, error) {
	args := Args{}
	rest := strings.TrimSpace(line)

	for _, p := range c.Params {
		var raw string
		if p.Rest {
			raw, rest = rest, ""
		} else {
			raw, rest = nextWord(rest)
		}

		if raw == "" {
			if p.Optional {
				continue
			}
			return nil, missingArgument(p.Name)
		}

		if p.Validate != nil {
			if err := p.Validate(raw); err != nil {
				return nil, badArgument(p.Name, err)
			}
		}

		args[p.Name] = raw
	}

	if rest != "" {
		return nil, NewUserError("Expected at most %d argument(s), got %d", len(c.Params), len(strings.Fields(line)))
	}

	return args, nil
}

func nextWord(s string) (string, string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}
