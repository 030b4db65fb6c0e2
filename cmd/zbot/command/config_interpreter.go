package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-zbot/internal/interp"
)

type InterpreterConfig struct {
	Path            string `json:"path"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	StartupDelay    string `json:"startup_delay"`
	SettleDelay     string `json:"settle_delay"`
	ResponseTimeout string `json:"response_timeout"`
	ReadLimit       int    `json:"read_limit"`
}

func (c *InterpreterConfig) validate() error {
	el := errors.NewErrorList()

	if c.Width < 0 || c.Height < 0 {
		el.Add(fmt.Errorf("interpreter: width and height must not be negative"))
	}
	if c.ReadLimit < 0 {
		el.Add(fmt.Errorf("interpreter: read_limit must not be negative"))
	}

	_, err := c.buildOpts()
	el.Add(err)

	return el.Err()
}

func (c *InterpreterConfig) BuildSupervisor() (*interp.Supervisor, error) {
	opts, err := c.buildOpts()
	if err != nil {
		return nil, err
	}
	return interp.NewSupervisor(opts...), nil
}

func (c *InterpreterConfig) buildOpts() ([]interp.SupervisorOpt, error) {
	el := errors.NewErrorList()
	var opts []interp.SupervisorOpt

	if c.Path != "" {
		opts = append(opts, interp.WithExecutable(c.Path))
	}
	if c.Width > 0 || c.Height > 0 {
		w, h := c.Width, c.Height
		if w <= 0 {
			w = interp.DefaultTerminalSize
		}
		if h <= 0 {
			h = interp.DefaultTerminalSize
		}
		opts = append(opts, interp.WithTerminalSize(w, h))
	}
	if c.ReadLimit > 0 {
		opts = append(opts, interp.WithReadLimit(c.ReadLimit))
	}

	startup, err := parseDuration("interpreter: startup_delay", c.StartupDelay, interp.DefaultStartupDelay)
	el.Add(err)
	settle, err := parseDuration("interpreter: settle_delay", c.SettleDelay, interp.DefaultSettleDelay)
	el.Add(err)
	timeout, err := parseDuration("interpreter: response_timeout", c.ResponseTimeout, interp.DefaultResponseTimeout)
	el.Add(err)

	if err := el.Err(); err != nil {
		return nil, err
	}

	opts = append(opts,
		interp.WithStartupDelay(startup),
		interp.WithSettleDelay(settle),
		interp.WithResponseTimeout(timeout),
	)
	return opts, nil
}
