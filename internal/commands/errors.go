package commands

import "fmt"

// UserError represents an error that should be displayed to the user.
// These are not system failures - just invalid input or usage.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// NewUserError creates a user-facing error.
func NewUserError(format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

func missingArgument(name string) *UserError {
	return NewUserError("Missing argument '%s'", name)
}

func badArgument(name string, err error) *UserError {
	return NewUserError("Bad argument '%s': %v", name, err)
}
