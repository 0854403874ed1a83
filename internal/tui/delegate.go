package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todo-remote/internal/controller"
	"github.com/idilsaglam/todo-remote/internal/model"
	"github.com/idilsaglam/todo-remote/internal/ui"
)

// rowItem adapts a todo to bubbles/list.Item.
type rowItem struct {
	todo model.Todo
}

func (i rowItem) FilterValue() string { return i.todo.Title }

// rowView is what the delegate needs beyond the item itself. It is shared
// by pointer and refreshed right before the list renders.
type rowView struct {
	state   controller.State
	editBox string
	spinner string
}

// rowDelegate draws one todo per line.
type rowDelegate struct {
	view *rowView
}

func (d rowDelegate) Height() int                               { return 1 }
func (d rowDelegate) Spacing() int                              { return 0 }
func (d rowDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(rowItem)
	if !ok {
		return
	}
	t := ui.Current()
	td := it.todo
	editing := !td.Pending() && d.view.state.Editing(td.ID)

	box := t.Muted.Render(t.BoxUnchecked)
	title := td.Title
	if td.Completed {
		box = t.Success.Render(t.BoxChecked)
		title = t.Done.Render(title)
	}
	if editing {
		title = d.view.editBox
	}

	line := box + " " + title
	if d.view.state.IsLoading(td.Key()) {
		line += " " + t.Pending.Render(d.view.spinner)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render(">") + " "
		// the delete control is hidden while the row is being edited
		if !editing && !td.Pending() {
			line += "  " + t.Muted.Render("✕")
		}
	}
	fmt.Fprint(w, prefix+line)
}
