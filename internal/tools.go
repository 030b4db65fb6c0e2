package internal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrTooManyTries is returned by Prompt when every allowed answer was rejected.
var ErrTooManyTries = errors.New("too many tries")

type promptValidator func(string) (bool, string)

type promptConfig struct {
	tries     int
	validator promptValidator
}

type promptOption func(*promptConfig)

func WithValidator(v promptValidator) promptOption {
	return func(cfg *promptConfig) {
		cfg.validator = v
	}
}

func WithMaxTries(i int) promptOption {
	return func(cfg *promptConfig) {
		cfg.tries = i
	}
}

// ReadLine reads one line from r without its line ending. Telnet clients may
// end lines with CR NUL, which is stripped as well.
func ReadLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n\x00"), nil
}

// Prompt writes prompt to w and reads an answer from r until the validator
// accepts it. The reader is shared with the caller so buffered input is
// never lost between prompts.
func Prompt(r *bufio.Reader, w io.Writer, prompt string, opts ...promptOption) (string, error) {
	config := &promptConfig{}
	for _, opt := range opts {
		opt(config)
	}

	tries := 0
	for {
		if _, err := io.WriteString(w, prompt); err != nil {
			return "", err
		}

		input, err := ReadLine(r)
		if err != nil {
			return "", err
		}
		input = strings.TrimSpace(input)

		if config.validator != nil {
			ok, msg := config.validator(input)
			if !ok {
				if _, err := io.WriteString(w, msg); err != nil {
					return "", err
				}

				tries++
				if config.tries > 0 && config.tries == tries {
					_, _ = io.WriteString(w, "too many tries\n")
					return "", ErrTooManyTries
				}

				continue
			}
		}

		return input, nil
	}
}

func PromptYN(r *bufio.Reader, w io.Writer, prompt string) (bool, error) {
	str, err := Prompt(r, w, prompt, WithValidator(
		func(str string) (bool, string) {
			switch strings.ToLower(str) {
			case "y", "yes", "n", "no":
				return true, ""
			default:
				return false, "enter 'yes' or 'no'\n"
			}
		},
	))
	if err != nil {
		return false, fmt.Errorf("reading answer: %w", err)
	}

	switch strings.ToLower(str) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
