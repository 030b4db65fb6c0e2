package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	Interpreter InterpreterConfig `json:"interpreter"`
	Storage     StorageConfig     `json:"storage"`
	Games       GamesConfig       `json:"games"`
	Nats        NatsConfig        `json:"nats"`
	Listeners   []ListenerConfig  `json:"listeners"`
	Janitor     JanitorConfig     `json:"janitor"`
	Commands    CommandsConfig    `json:"commands"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	el.Add(c.Interpreter.validate())
	el.Add(c.Storage.validate())
	el.Add(c.Games.validate(c.Storage.GamesPath))
	el.Add(c.Nats.validate())

	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	el.Add(c.Janitor.validate())
	el.Add(c.Commands.validate())

	return el.Err()
}

// parseDuration parses an optional duration setting. Empty means fallback.
func parseDuration(name, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", name)
	}
	return d, nil
}

type CommandsConfig struct {
	Prefix string `json:"prefix"`
}

func (c *CommandsConfig) validate() error {
	el := errors.NewErrorList()

	if strings.ContainsAny(c.Prefix, " \t\n") {
		el.Add(fmt.Errorf("commands: prefix must not contain whitespace"))
	}
	if strings.HasPrefix(c.Prefix, "!") {
		el.Add(fmt.Errorf("commands: prefix must not start with '!'"))
	}

	return el.Err()
}
