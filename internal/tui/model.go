// Package tui is the interactive terminal front end. It renders controller
// snapshots and turns key presses into controller operations; every network
// call runs inside a tea.Cmd so the event loop never blocks.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todo-remote/internal/controller"
	"github.com/idilsaglam/todo-remote/internal/logging"
	"github.com/idilsaglam/todo-remote/internal/model"
)

type mode int

const (
	modeBrowse mode = iota
	modeEntry
	modeEdit
)

// chrome is the number of lines drawn around the list.
const chrome = 11

type (
	changedMsg struct{}
	loadedMsg  struct{ err error }
	opDoneMsg  struct {
		op  string
		err error
	}
	submitDoneMsg struct{ err error }
)

// Model is the Bubble Tea model.
type Model struct {
	ctl  *controller.Controller
	ctx  context.Context
	log  *log.Logger
	keys keyMap

	list    list.Model
	entry   textinput.Model
	edit    textinput.Model
	spinner spinner.Model
	help    help.Model
	view    *rowView

	state      controller.State
	mode       mode
	submitting bool
	width      int
	height     int
}

// Option configures a Model.
type Option func(*Model)

// WithContext sets the context handed to controller operations.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) { m.log = logging.Component(l, "tui") }
}

// New builds the model around ctl.
func New(ctl *controller.Controller, opts ...Option) Model {
	m := Model{
		ctl:    ctl,
		ctx:    context.Background(),
		log:    logging.Discard(),
		keys:   defaultKeyMap(),
		help:   help.New(),
		view:   &rowView{},
		width:  80,
		height: 24,
	}
	for _, o := range opts {
		o(&m)
	}

	l := list.New(nil, rowDelegate{view: m.view}, m.width-4, m.height-chrome)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)
	l.DisableQuitKeybindings()
	m.list = l

	m.entry = textinput.New()
	m.entry.Prompt = "> "
	m.entry.Placeholder = "What needs to be done?"
	m.entry.CharLimit = 200

	m.edit = textinput.New()
	m.edit.Prompt = ""
	m.edit.CharLimit = 200

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.refresh()
	return m
}

// Run starts the program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, ctl *controller.Controller, logger *log.Logger) error {
	m := New(ctl, WithContext(ctx), WithLogger(logger))
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	ctl, ctx := m.ctl, m.ctx
	load := func() tea.Msg { return loadedMsg{err: ctl.Load(ctx)} }
	return tea.Batch(load, waitForChange(ctl), m.spinner.Tick)
}

// waitForChange delivers one changedMsg per controller notification. It is
// re-armed after every delivery so exactly one waiter is outstanding.
func waitForChange(ctl *controller.Controller) tea.Cmd {
	ch := ctl.Changes()
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

// run wraps a controller operation in a command.
func (m Model) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg { return opDoneMsg{op: op, err: fn(ctx)} }
}

// refresh pulls a new snapshot and rebuilds the rows.
func (m *Model) refresh() {
	m.state = m.ctl.State()
	items := make([]list.Item, 0, len(m.state.Visible))
	for _, t := range m.state.Visible {
		items = append(items, rowItem{todo: t})
	}
	m.list.SetItems(items)

	if m.mode == modeEdit && m.state.Edit == nil {
		m.mode = modeBrowse
		m.edit.Blur()
	}
}

// selected returns the todo under the cursor.
func (m Model) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(rowItem)
	if !ok {
		return model.Todo{}, false
	}
	return it.todo, true
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	lh := h - chrome
	if lh < 3 {
		lh = 3
	}
	m.list.SetSize(w-4, lh)
	m.help.Width = w - 4
	m.entry.Width = w - 10
}
