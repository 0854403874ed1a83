// Package controller owns the todo collection shown to the user and
// coordinates every call to the remote service: optimistic placeholders,
// per-row loading marks, the edit session and the transient error banner.
//
// All state lives in one struct behind a mutex. Network calls run outside
// the lock, so operations may be issued concurrently from several
// goroutines; completions are applied in the order they resolve.
package controller

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todo-remote/internal/api"
	"github.com/idilsaglam/todo-remote/internal/logging"
	"github.com/idilsaglam/todo-remote/internal/model"
)

// User-facing messages. The service's error kind is never inspected; every
// failure of an operation maps to its fixed message.
const (
	MsgLoad       = "Unable to load todos"
	MsgAdd        = "Unable to add a todo"
	MsgUpdate     = "Unable to update a todo"
	MsgUpdateAll  = "Unable to update todos"
	MsgDelete     = "Unable to delete a todo"
	MsgEmptyTitle = "Title should not be empty"
)

// DefaultErrorTTL is how long an error message stays up on its own.
const DefaultErrorTTL = 3 * time.Second

var (
	// ErrEmptyTitle is returned by Submit for blank titles.
	ErrEmptyTitle = errors.New("title should not be empty")
	// ErrCreatePending is returned by Create while another create is in flight.
	ErrCreatePending = errors.New("a todo is already being created")
)

// EditSession is the single row currently being renamed.
type EditSession struct {
	ID    int
	Draft string
}

// State is an immutable snapshot of the controller.
type State struct {
	Todos        []model.Todo
	Visible      []model.Todo
	Completed    []model.Todo
	Remaining    int
	AllCompleted bool
	Filter       model.Filter
	Edit         *EditSession
	Loading      map[model.Key]bool
	TogglingAll  bool
	Error        string
	Loaded       bool
}

// IsLoading reports whether a call is in flight for the row with key k.
func (s State) IsLoading(k model.Key) bool { return s.Loading[k] }

// Editing reports whether the row with id is in edit mode.
func (s State) Editing(id int) bool { return s.Edit != nil && s.Edit.ID == id }

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.log = logging.Component(l, "controller") }
}

// WithErrorTTL sets how long error messages live. Zero disables expiry.
func WithErrorTTL(d time.Duration) Option {
	return func(c *Controller) { c.errorTTL = d }
}

// Controller is the application state machine.
type Controller struct {
	svc      api.Service
	userID   int
	log      *log.Logger
	errorTTL time.Duration

	mu          sync.Mutex
	todos       []model.Todo
	filter      model.Filter
	edit        *EditSession
	loading     map[model.Key]struct{}
	togglingAll bool
	loaded      bool
	errMsg      string
	errSeq      uint64
	errTimer    *time.Timer

	changes chan struct{}
}

// New returns a controller for userID backed by svc. The collection starts
// empty; call Load to fetch it.
func New(svc api.Service, userID int, opts ...Option) *Controller {
	c := &Controller{
		svc:      svc,
		userID:   userID,
		log:      logging.Component(nil, "controller"),
		errorTTL: DefaultErrorTTL,
		loading:  map[model.Key]struct{}{},
		changes:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Changes delivers a value after state changes. Notifications coalesce:
// a reader that falls behind sees one pending value, never a backlog.
func (c *Controller) Changes() <-chan struct{} { return c.changes }

// Close stops the pending error expiry timer.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.errTimer != nil {
		c.errTimer.Stop()
		c.errTimer = nil
	}
}

// State returns a snapshot with the derived values recomputed.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	todos := append([]model.Todo(nil), c.todos...)
	loading := make(map[model.Key]bool, len(c.loading))
	for k := range c.loading {
		loading[k] = true
	}
	var edit *EditSession
	if c.edit != nil {
		e := *c.edit
		edit = &e
	}
	return State{
		Todos:        todos,
		Visible:      c.filter.Apply(todos),
		Completed:    model.CompletedItems(todos),
		Remaining:    model.Remaining(todos),
		AllCompleted: model.AllCompleted(todos),
		Filter:       c.filter,
		Edit:         edit,
		Loading:      loading,
		TogglingAll:  c.togglingAll,
		Error:        c.errMsg,
		Loaded:       c.loaded,
	}
}

// SetFilter changes the active view filter.
func (c *Controller) SetFilter(f model.Filter) {
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()
	c.notify()
}

// DismissError clears the current error message.
func (c *Controller) DismissError() {
	c.mu.Lock()
	c.clearErrorLocked()
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) notify() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

// setErrorLocked replaces the message and restarts its expiry timer.
func (c *Controller) setErrorLocked(msg string) {
	c.clearErrorLocked()
	c.errMsg = msg
	if c.errorTTL <= 0 {
		return
	}
	seq := c.errSeq
	c.errTimer = time.AfterFunc(c.errorTTL, func() { c.expireError(seq) })
}

func (c *Controller) clearErrorLocked() {
	c.errSeq++
	c.errMsg = ""
	if c.errTimer != nil {
		c.errTimer.Stop()
		c.errTimer = nil
	}
}

// expireError clears the message only if it has not been replaced since the
// timer for seq was armed.
func (c *Controller) expireError(seq uint64) {
	c.mu.Lock()
	if c.errSeq != seq {
		c.mu.Unlock()
		return
	}
	c.errMsg = ""
	c.errTimer = nil
	c.mu.Unlock()
	c.notify()
}

// findLocked returns the persisted todo with id.
func (c *Controller) findLocked(id int) (model.Todo, bool) {
	for _, t := range c.todos {
		if !t.Pending() && t.ID == id {
			return t, true
		}
	}
	return model.Todo{}, false
}

func (c *Controller) removeLocked(k model.Key) {
	out := c.todos[:0]
	for _, t := range c.todos {
		if t.Key() != k {
			out = append(out, t)
		}
	}
	c.todos = out
}

func (c *Controller) replaceLocked(t model.Todo) {
	for i := range c.todos {
		if !c.todos[i].Pending() && c.todos[i].ID == t.ID {
			c.todos[i] = t
			return
		}
	}
}

func (c *Controller) hasPlaceholderLocked() bool {
	for _, t := range c.todos {
		if t.Pending() {
			return true
		}
	}
	return false
}
