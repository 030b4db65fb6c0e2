package interp

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoResponse is returned when the interpreter wrote nothing before the response timeout.
	ErrNoResponse = errors.New("interpreter produced no output before the response timeout")
	// ErrExited is returned when the interpreter closed its output without responding.
	ErrExited = errors.New("interpreter exited")
)

// LaunchError reports an interpreter that could not be started or complained
// on its error stream right after starting.
type LaunchError struct {
	Game   string
	Stderr string
	Err    error
}

func (e *LaunchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("launching interpreter for %s: %v", e.Game, e.Err)
	}
	return fmt.Sprintf("launching interpreter for %s: %s", e.Game, strings.TrimSpace(e.Stderr))
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}
