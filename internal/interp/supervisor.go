// Package interp runs one short-lived interpreter process per interaction.
//
// The interpreter speaks a plain console protocol with no end-of-response
// marker, so a response is considered complete once its output has been
// quiet for the settle delay.
package interp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/pixil98/go-zbot/internal/catalog"
)

const (
	DefaultExecutable      = "bin/dfrotz"
	DefaultTerminalSize    = 100000
	DefaultStartupDelay    = 100 * time.Millisecond
	DefaultSettleDelay     = 100 * time.Millisecond
	DefaultResponseTimeout = 5 * time.Second
	DefaultReadLimit       = 100000
)

type Supervisor struct {
	executable      string
	width           int
	height          int
	startupDelay    time.Duration
	settleDelay     time.Duration
	responseTimeout time.Duration
	readLimit       int
	env             []string
}

func NewSupervisor(opts ...SupervisorOpt) *Supervisor {
	s := &Supervisor{
		executable:      DefaultExecutable,
		width:           DefaultTerminalSize,
		height:          DefaultTerminalSize,
		startupDelay:    DefaultStartupDelay,
		settleDelay:     DefaultSettleDelay,
		responseTimeout: DefaultResponseTimeout,
		readLimit:       DefaultReadLimit,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run starts an interpreter for g, hands it to fn and kills it afterwards,
// whatever fn returns.
func (s *Supervisor) Run(ctx context.Context, g *catalog.Game, fn func(*Process) error) error {
	p, err := s.Start(ctx, g)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Kill(); err != nil {
			slog.WarnContext(ctx, "terminating interpreter", "game", g.ID, "pid", p.Pid(), "error", err)
		}
	}()

	return fn(p)
}

// Start spawns an interpreter for g. The caller owns the returned process and
// must Kill it.
func (s *Supervisor) Start(ctx context.Context, g *catalog.Game) (*Process, error) {
	exe := g.Interpreter
	if exe == "" {
		exe = s.executable
	}

	cmd := exec.CommandContext(ctx, exe,
		"-w", strconv.Itoa(s.width),
		"-h", strconv.Itoa(s.height),
		g.File,
	)
	if len(s.env) > 0 {
		cmd.Env = append(os.Environ(), s.env...)
	}

	p, err := s.spawn(cmd, g)
	if err != nil {
		return nil, &LaunchError{Game: g.ID, Err: err}
	}

	slog.InfoContext(ctx, "started interpreter", "game", g.ID, "pid", p.Pid())

	if err := p.checkStartup(ctx, s.startupDelay); err != nil {
		if kerr := p.Kill(); kerr != nil {
			slog.WarnContext(ctx, "terminating interpreter", "game", g.ID, "pid", p.Pid(), "error", kerr)
		}
		return nil, err
	}

	return p, nil
}

func (s *Supervisor) spawn(cmd *exec.Cmd, g *catalog.Game) (*Process, error) {
	var parentEnds, childEnds []io.Closer
	closeAll := func(cs []io.Closer) {
		for _, c := range cs {
			_ = c.Close()
		}
	}

	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdin pipe: %w", err)
	}
	parentEnds = append(parentEnds, stdinW)
	childEnds = append(childEnds, stdinR)

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		closeAll(parentEnds)
		closeAll(childEnds)
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	parentEnds = append(parentEnds, stdoutR)
	childEnds = append(childEnds, stdoutW)

	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(parentEnds)
		closeAll(childEnds)
		return nil, fmt.Errorf("creating stderr pipe: %w", err)
	}
	parentEnds = append(parentEnds, stderrR)
	childEnds = append(childEnds, stderrW)

	cmd.Stdin = stdinR
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	err = cmd.Start()
	// The child holds its own copies now.
	closeAll(childEnds)
	if err != nil {
		closeAll(parentEnds)
		return nil, err
	}

	return &Process{
		game:      g.ID,
		cmd:       cmd,
		stdin:     stdinW,
		stdout:    stdoutR,
		stderr:    stderrR,
		settle:    s.settleDelay,
		timeout:   s.responseTimeout,
		readLimit: s.readLimit,
	}, nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, os.ErrDeadlineExceeded)
}
