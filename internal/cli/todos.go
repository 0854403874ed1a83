package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todo-remote/internal/controller"
	"github.com/idilsaglam/todo-remote/internal/model"
	"github.com/idilsaglam/todo-remote/internal/ui"
)

func newListCmd(app *App) *cobra.Command {
	var (
		filter string
		group  bool
	)
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List todos",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := model.ParseFilter(filter)
			if err != nil {
				return usageError{err: err}
			}
			ctl, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			defer ctl.Close()

			ctl.SetFilter(f)
			fmt.Fprintln(app.Out, ui.Panel(listLines(ctl.State(), group)))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "all", "Show all|active|completed")
	cmd.Flags().BoolVar(&group, "group", false, "Group output by active/completed")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a todo (title can be multiple words)",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			defer ctl.Close()

			td, err := ctl.Submit(cmd.Context(), strings.Join(args, " "))
			if errors.Is(err, controller.ErrEmptyTitle) {
				return usageError{err: err}
			}
			if err != nil {
				return opError(ctl, err)
			}
			ui.OK(app.Out, fmt.Sprintf("added #%d %s", td.ID, td.Title))
			return nil
		},
	}
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle the completed state of a todo",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctl, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			defer ctl.Close()

			if _, ok := find(ctl.State(), id); !ok {
				return notFound(id)
			}
			if err := ctl.ToggleOne(cmd.Context(), id); err != nil {
				return opError(ctl, err)
			}
			td, _ := find(ctl.State(), id)
			state := "active"
			if td.Completed {
				state = "completed"
			}
			ui.OK(app.Out, fmt.Sprintf("#%d is %s", id, state))
			return nil
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctl, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			defer ctl.Close()

			if _, ok := find(ctl.State(), id); !ok {
				return notFound(id)
			}
			if err := ctl.Delete(cmd.Context(), id); err != nil {
				return opError(ctl, err)
			}
			ui.OK(app.Out, fmt.Sprintf("removed #%d", id))
			return nil
		},
	}
}

func newRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title...>",
		Short: "Rename a todo; an empty title deletes it",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctl, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			defer ctl.Close()

			if !ctl.StartEdit(id) {
				return notFound(id)
			}
			title := strings.Join(args[1:], " ")
			ctl.SetDraft(title)
			if err := ctl.SaveEdit(cmd.Context()); err != nil {
				return opError(ctl, err)
			}
			if _, ok := find(ctl.State(), id); !ok {
				ui.OK(app.Out, fmt.Sprintf("removed #%d", id))
				return nil
			}
			ui.OK(app.Out, fmt.Sprintf("renamed #%d to %s", id, strings.TrimSpace(title)))
			return nil
		},
	}
}

func newToggleAllCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-all",
		Short: "Mark every todo completed, or every todo active if all are completed",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			defer ctl.Close()

			if len(ctl.State().Todos) == 0 {
				ui.OK(app.Out, "nothing to toggle")
				return nil
			}
			if err := ctl.ToggleAll(cmd.Context()); err != nil {
				return opError(ctl, err)
			}
			s := ctl.State()
			if s.AllCompleted {
				ui.OK(app.Out, fmt.Sprintf("all %d todos completed", len(s.Todos)))
			} else {
				ui.OK(app.Out, fmt.Sprintf("all %d todos active", len(s.Todos)))
			}
			return nil
		},
	}
}

func newClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every completed todo",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			defer ctl.Close()

			before := len(ctl.State().Completed)
			err = ctl.ClearCompleted(cmd.Context())
			cleared := before - len(ctl.State().Completed)
			if err != nil {
				return fmt.Errorf("cleared %d of %d: %w", cleared, before, opError(ctl, err))
			}
			ui.OK(app.Out, fmt.Sprintf("cleared %d completed", cleared))
			return nil
		},
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, usagef("not a todo id: %s", s)
	}
	return id, nil
}

func find(s controller.State, id int) (model.Todo, bool) {
	for _, td := range s.Todos {
		if !td.Pending() && td.ID == id {
			return td, true
		}
	}
	return model.Todo{}, false
}
