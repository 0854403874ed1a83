// Package apitest provides an in-memory todo service for tests, usable both
// directly as a Service and behind an httptest server.
package apitest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/idilsaglam/todo-remote/internal/model"
)

// ErrInjected is returned by operations configured to fail.
var ErrInjected = errors.New("apitest: injected failure")

// Operation names used by Calls and Started.
const (
	OpList   = "list"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Fake is a goroutine-safe in-memory todo service.
type Fake struct {
	mu         sync.Mutex
	userID     int
	todos      []model.Todo
	nextID     int
	failList   bool
	failCreate bool
	failUpdate map[int]bool
	failDelete map[int]bool
	calls      map[string]int
	updates    []model.Todo

	gate    chan struct{}
	started chan string
}

// New returns a fake seeded with todos. Ids are assigned after the highest
// seeded id.
func New(userID int, todos ...model.Todo) *Fake {
	f := &Fake{
		userID:     userID,
		failUpdate: map[int]bool{},
		failDelete: map[int]bool{},
		calls:      map[string]int{},
		started:    make(chan string, 128),
	}
	for _, t := range todos {
		if t.ID > f.nextID {
			f.nextID = t.ID
		}
		f.todos = append(f.todos, t)
	}
	return f
}

// SetNextID makes the next created todo receive id.
func (f *Fake) SetNextID(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID = id - 1
}

func (f *Fake) FailList()   { f.mu.Lock(); f.failList = true; f.mu.Unlock() }
func (f *Fake) FailCreate() { f.mu.Lock(); f.failCreate = true; f.mu.Unlock() }

// FailUpdate makes updates of the given ids fail.
func (f *Fake) FailUpdate(ids ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		f.failUpdate[id] = true
	}
}

// FailDelete makes deletes of the given ids fail.
func (f *Fake) FailDelete(ids ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		f.failDelete[id] = true
	}
}

// Hold makes every subsequent call block after it has been recorded until
// the returned release func is called.
func (f *Fake) Hold() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			f.gate = nil
			f.mu.Unlock()
			close(gate)
		})
	}
}

// Started receives the operation name of every call as it begins.
func (f *Fake) Started() <-chan string { return f.started }

// Calls returns how many times op was invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// TotalCalls returns the number of calls of any kind.
func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// Updates returns every record sent to Update, in arrival order.
func (f *Fake) Updates() []model.Todo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Todo(nil), f.updates...)
}

// Todos returns the stored collection.
func (f *Fake) Todos() []model.Todo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Todo(nil), f.todos...)
}

// enter records the call and waits on the gate, if any.
func (f *Fake) enter(ctx context.Context, op string) error {
	f.mu.Lock()
	f.calls[op]++
	gate := f.gate
	f.mu.Unlock()

	select {
	case f.started <- op:
	default:
	}
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Fake) List(ctx context.Context) ([]model.Todo, error) {
	if err := f.enter(ctx, OpList); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList {
		return nil, ErrInjected
	}
	return append([]model.Todo{}, f.todos...), nil
}

func (f *Fake) Create(ctx context.Context, n model.NewTodo) (model.Todo, error) {
	if err := f.enter(ctx, OpCreate); err != nil {
		return model.Todo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return model.Todo{}, ErrInjected
	}
	f.nextID++
	if n.UserID == 0 {
		n.UserID = f.userID
	}
	t := model.Todo{ID: f.nextID, UserID: n.UserID, Title: n.Title, Completed: n.Completed}
	f.todos = append(f.todos, t)
	return t, nil
}

func (f *Fake) Update(ctx context.Context, t model.Todo) (model.Todo, error) {
	if err := f.enter(ctx, OpUpdate); err != nil {
		return model.Todo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, t)
	if f.failUpdate[t.ID] {
		return model.Todo{}, ErrInjected
	}
	for i := range f.todos {
		if f.todos[i].ID == t.ID {
			f.todos[i] = t
			return t, nil
		}
	}
	return model.Todo{}, fmt.Errorf("apitest: todo %d not found", t.ID)
}

func (f *Fake) Delete(ctx context.Context, id int) error {
	if err := f.enter(ctx, OpDelete); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete[id] {
		return ErrInjected
	}
	for i := range f.todos {
		if f.todos[i].ID == id {
			f.todos = append(f.todos[:i], f.todos[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("apitest: todo %d not found", id)
}
