package interp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const readChunk = 4096

// Process is one running interpreter. It is never reused across commands.
type Process struct {
	game string
	cmd  *exec.Cmd

	stdin  *os.File
	stdout *os.File
	stderr *os.File

	settle    time.Duration
	timeout   time.Duration
	readLimit int

	killOnce sync.Once
	killErr  error
}

func (p *Process) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *Process) Game() string {
	return p.game
}

// Send writes text to the interpreter and returns what it printed in response.
// Text is sent verbatim; callers append the newline.
func (p *Process) Send(ctx context.Context, text string) (string, error) {
	if _, err := io.WriteString(p.stdin, text); err != nil {
		return "", fmt.Errorf("writing to interpreter: %w", err)
	}

	data, err := p.drain(ctx, p.stdout)
	if err != nil {
		return decode(data), err
	}

	return decode(data), nil
}

// Kill terminates the process and releases its pipes. It is safe to call
// more than once; only the first call does any work.
func (p *Process) Kill() error {
	p.killOnce.Do(func() {
		err := p.cmd.Process.Kill()
		if err != nil && !errors.Is(err, os.ErrProcessDone) {
			p.killErr = fmt.Errorf("killing interpreter: %w", err)
		}

		// Reap the child; a kill signal exit status is expected.
		_ = p.cmd.Wait()

		_ = p.stdin.Close()
		_ = p.stdout.Close()
		_ = p.stderr.Close()
	})

	return p.killErr
}

// checkStartup watches stderr for the startup window. Anything written there
// means the interpreter could not load the story.
func (p *Process) checkStartup(ctx context.Context, window time.Duration) error {
	if err := p.stderr.SetReadDeadline(time.Now().Add(window)); err != nil {
		return &LaunchError{Game: p.game, Err: fmt.Errorf("setting stderr deadline: %w", err)}
	}

	buf := make([]byte, readChunk)
	n, err := p.stderr.Read(buf)
	switch {
	case n > 0:
		rest, _ := p.collect(ctx, p.stderr, buf[:n])
		return &LaunchError{Game: p.game, Stderr: decode(rest)}
	case err == nil, isTimeout(err):
		return ctx.Err()
	case errors.Is(err, io.EOF):
		return &LaunchError{Game: p.game, Err: ErrExited}
	default:
		return &LaunchError{Game: p.game, Err: fmt.Errorf("reading stderr: %w", err)}
	}
}

// drain waits the settle delay, then reads f until it has been quiet for the
// settle delay. No bytes before the response timeout is ErrNoResponse.
func (p *Process) drain(ctx context.Context, f *os.File) ([]byte, error) {
	if err := sleep(ctx, p.settle); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(p.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := f.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("setting read deadline: %w", err)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = f.SetReadDeadline(time.Unix(1, 0))
	})
	defer stop()

	buf := make([]byte, readChunk)
	n, err := f.Read(buf)
	switch {
	case n > 0:
		return p.collect(ctx, f, buf[:n])
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case isTimeout(err):
		return nil, ErrNoResponse
	case errors.Is(err, io.EOF):
		return nil, ErrExited
	default:
		return nil, fmt.Errorf("reading interpreter output: %w", err)
	}
}

// collect keeps reading after the first chunk until f stays quiet for the
// settle delay or the read limit is hit.
func (p *Process) collect(ctx context.Context, f *os.File, first []byte) ([]byte, error) {
	out := append([]byte(nil), first...)
	buf := make([]byte, readChunk)

	for len(out) < p.readLimit {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}

		if err := f.SetReadDeadline(time.Now().Add(p.settle)); err != nil {
			return out, fmt.Errorf("setting read deadline: %w", err)
		}

		n, err := f.Read(buf[:min(len(buf), p.readLimit-len(out))])
		out = append(out, buf[:n]...)
		switch {
		case err == nil:
		case isTimeout(err), errors.Is(err, io.EOF):
			return out, nil
		default:
			return out, fmt.Errorf("reading interpreter output: %w", err)
		}
	}

	return out, nil
}

// decode returns b as text. Interpreters built without UTF-8 support emit
// Latin-1, which is converted rather than mangled.
func decode(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(s)
}
