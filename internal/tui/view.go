package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/todo-remote/internal/controller"
	"github.com/idilsaglam/todo-remote/internal/model"
	"github.com/idilsaglam/todo-remote/internal/ui"
)

func (m Model) View() string {
	t := ui.Current()
	m.view.state = m.state
	m.view.editBox = m.edit.View()
	m.view.spinner = m.spinner.View()

	var b strings.Builder
	b.WriteString(header(m.state))
	b.WriteString("\n\n")
	b.WriteString(m.entryBar())
	b.WriteString("\n\n")

	switch {
	case !m.state.Loaded && m.state.Error == "":
		b.WriteString(t.Muted.Render(m.spinner.View() + " loading…"))
	case len(m.state.Visible) == 0:
		b.WriteString(t.Muted.Render("nothing here"))
	default:
		b.WriteString(m.list.View())
	}

	if f := footer(m.state); f != "" {
		b.WriteString("\n\n")
		b.WriteString(f)
	}
	if m.state.Error != "" {
		b.WriteString("\n\n")
		b.WriteString(t.Banner.Render(t.SymPending + " " + m.state.Error))
		b.WriteString(" " + t.Muted.Render("x to dismiss"))
	}
	b.WriteString("\n\n")
	b.WriteString(t.Help.Render(m.help.View(m.keys)))

	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(b.String())
}

// header is the title with live counts.
func header(s controller.State) string {
	t := ui.Current()
	done, pending := stats(s.Todos)
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render("todos"),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("total"), len(s.Todos),
	)
}

// entryBar is the toggle-all control followed by the new-todo input. The
// control only exists when there is something to toggle.
func (m Model) entryBar() string {
	t := ui.Current()
	toggle := "   "
	if len(m.state.Todos) > 0 {
		switch {
		case m.state.TogglingAll:
			toggle = t.Pending.Render(m.spinner.View()) + "  "
		case m.state.AllCompleted:
			toggle = t.Success.Render("❯") + "  "
		default:
			toggle = t.Muted.Render("❯") + "  "
		}
	}
	input := m.entry.View()
	if m.submitting {
		input += " " + t.Pending.Render(m.spinner.View())
	}
	return toggle + input
}

// footer shows the remaining count, the filter choices and the clear
// control. It is empty when there are no todos at all.
func footer(s controller.State) string {
	if len(s.Todos) == 0 {
		return ""
	}
	t := ui.Current()
	noun := "items"
	if s.Remaining == 1 {
		noun = "item"
	}
	parts := []string{fmt.Sprintf("%d %s left", s.Remaining, noun)}

	filters := make([]string, 0, len(model.Filters))
	for _, f := range model.Filters {
		label := strings.ToUpper(f.String()[:1]) + f.String()[1:]
		if f == s.Filter {
			filters = append(filters, t.Accent.Render("["+label+"]"))
		} else {
			filters = append(filters, t.Muted.Render(label))
		}
	}
	parts = append(parts, strings.Join(filters, " "))

	if len(s.Completed) > 0 {
		parts = append(parts, t.Muted.Render("C clear completed"))
	}
	return strings.Join(parts, "   ")
}

// stats counts completed and open rows for the header.
func stats(todos []model.Todo) (done, pending int) {
	for _, td := range todos {
		if td.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
