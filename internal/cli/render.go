package cli

import (
	"fmt"

	"github.com/idilsaglam/todo-remote/internal/controller"
	"github.com/idilsaglam/todo-remote/internal/model"
	"github.com/idilsaglam/todo-remote/internal/ui"
)

const maxTitle = 80

// listLines builds the `ls` panel body: header, progress and rows.
func listLines(s controller.State, group bool) []string {
	t := ui.Current()
	done := len(s.Completed)
	total := len(s.Todos)

	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), s.Remaining,
		t.Accent.Render("Total"), total,
	)

	lines := []string{header, t.Muted.Render(ui.ProgressBar(done, total, 28)), ""}
	if group {
		lines = append(lines, groupLines(s.Visible)...)
	} else {
		lines = append(lines, flatLines(s.Visible)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render(fmt.Sprintf("filter: %s", s.Filter)))
	return lines
}

func flatLines(todos []model.Todo) []string {
	t := ui.Current()
	if len(todos) == 0 {
		return []string{t.Muted.Render("no todos")}
	}
	out := make([]string, 0, len(todos))
	for _, td := range todos {
		box, style := t.BoxUnchecked, t.Muted
		if td.Completed {
			box, style = t.BoxChecked, t.Success
		}
		title := td.Title
		if r := []rune(title); len(r) > maxTitle {
			title = string(r[:maxTitle-3]) + "..."
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			t.Muted.Render(fmt.Sprintf("%5s", fmt.Sprintf("#%d", td.ID))),
			style.Render(box), title))
	}
	return out
}

func groupLines(todos []model.Todo) []string {
	t := ui.Current()
	var active, done []model.Todo
	for _, td := range todos {
		if td.Completed {
			done = append(done, td)
		} else {
			active = append(active, td)
		}
	}
	section := func(name string, items []model.Todo) []string {
		lines := []string{t.Accent.Render(name)}
		if len(items) == 0 {
			return append(lines, t.Muted.Render("(none)"))
		}
		return append(lines, flatLines(items)...)
	}
	lines := section("Active", active)
	lines = append(lines, "")
	return append(lines, section("Completed", done)...)
}
