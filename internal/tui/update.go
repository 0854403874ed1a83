package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todo-remote/internal/model"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case changedMsg:
		m.refresh()
		return m, waitForChange(m.ctl)

	case loadedMsg:
		if msg.err != nil {
			m.log.Warn("load failed", "err", msg.err)
		}
		m.refresh()
		return m, nil

	case opDoneMsg:
		if msg.err != nil {
			m.log.Warn("operation failed", "op", msg.op, "err", msg.err)
		}
		m.refresh()
		return m, nil

	case submitDoneMsg:
		m.submitting = false
		if msg.err == nil {
			m.entry.Reset()
		} else {
			m.log.Warn("create failed", "err", msg.err)
		}
		m.refresh()
		cmd := m.entry.Focus()
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		switch m.mode {
		case modeEntry:
			return m.updateEntry(msg)
		case modeEdit:
			return m.updateEdit(msg)
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctl := m.ctl
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Dismiss):
		ctl.DismissError()
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.mode = modeEntry
		cmd := m.entry.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Toggle):
		t, ok := m.selected()
		if !ok || t.Pending() {
			return m, nil
		}
		return m, m.run("toggle", func(ctx context.Context) error { return ctl.ToggleOne(ctx, t.ID) })

	case key.Matches(msg, m.keys.ToggleAll):
		if len(m.state.Todos) == 0 {
			return m, nil
		}
		return m, m.run("toggle-all", ctl.ToggleAll)

	case key.Matches(msg, m.keys.Edit):
		t, ok := m.selected()
		if !ok || t.Pending() || !ctl.StartEdit(t.ID) {
			return m, nil
		}
		m.mode = modeEdit
		m.edit.SetValue(t.Title)
		m.edit.CursorEnd()
		m.refresh()
		cmd := m.edit.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Delete):
		t, ok := m.selected()
		if !ok || t.Pending() {
			return m, nil
		}
		return m, m.run("delete", func(ctx context.Context) error { return ctl.Delete(ctx, t.ID) })

	case key.Matches(msg, m.keys.Filter):
		ctl.SetFilter(m.state.Filter.Next())
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.FilterAll, m.keys.FilterAct, m.keys.FilterDone):
		f := model.FilterAll
		switch {
		case key.Matches(msg, m.keys.FilterAct):
			f = model.FilterActive
		case key.Matches(msg, m.keys.FilterDone):
			f = model.FilterCompleted
		}
		ctl.SetFilter(f)
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		if len(m.state.Completed) == 0 {
			return m, nil
		}
		return m, m.run("clear-completed", ctl.ClearCompleted)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// the entry bar is disabled while a create is in flight
	if m.submitting {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Commit):
		return m.submit()
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeBrowse
		m.entry.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.entry, cmd = m.entry.Update(msg)
	return m, cmd
}

// submit hands the entry text to the controller. Blank titles are rejected
// locally, so only real creates go through a command.
func (m Model) submit() (tea.Model, tea.Cmd) {
	ctl, ctx := m.ctl, m.ctx
	title := m.entry.Value()
	if strings.TrimSpace(title) == "" {
		_, _ = ctl.Submit(ctx, title)
		m.refresh()
		return m, nil
	}
	m.submitting = true
	m.entry.Blur()
	return m, func() tea.Msg {
		_, err := ctl.Submit(ctx, title)
		return submitDoneMsg{err: err}
	}
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctl := m.ctl
	switch {
	case key.Matches(msg, m.keys.Cancel):
		ctl.CancelEdit()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Commit, m.keys.CommitBlur):
		ctl.SetDraft(m.edit.Value())
		return m, m.run("rename", ctl.SaveEdit)
	}
	var cmd tea.Cmd
	m.edit, cmd = m.edit.Update(msg)
	ctl.SetDraft(m.edit.Value())
	return m, cmd
}
