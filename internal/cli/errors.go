package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todo-remote/internal/config"
	"github.com/idilsaglam/todo-remote/internal/controller"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// usageError marks mistakes on the command line.
type usageError struct {
	err  error
	hint string
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

func notFound(id int) error {
	return usageError{
		err:  fmt.Errorf("no todo with id %d", id),
		hint: "run `todo ls` to see valid ids",
	}
}

// usageArgs wraps a cobra argument validator so its failures count as usage
// errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError{err: err}
		}
		return nil
	}
}

// opError pairs the controller's user-facing message with the cause.
func opError(ctl *controller.Controller, err error) error {
	if msg := ctl.State().Error; msg != "" {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return err
}

// ExitCode maps an Execute error to the process exit status.
func ExitCode(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &ue), errors.Is(err, config.ErrNoUser), errors.Is(err, controller.ErrEmptyTitle):
		return ExitUsage
	default:
		return ExitFailure
	}
}

// hintFor returns the follow-up line printed under an error, if any.
func hintFor(err error) string {
	var ue usageError
	if errors.As(err, &ue) {
		return ue.hint
	}
	if errors.Is(err, config.ErrNoUser) {
		return "run `todo config init --user <id>` to create a config file"
	}
	return ""
}
