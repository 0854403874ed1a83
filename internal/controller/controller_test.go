package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todo-remote/internal/api/apitest"
	"github.com/idilsaglam/todo-remote/internal/model"
)

const user = 939

func todo(id int, title string, done bool) model.Todo {
	return model.Todo{ID: id, UserID: user, Title: title, Completed: done}
}

// setup returns a loaded controller over a fake seeded with todos.
func setup(t *testing.T, todos ...model.Todo) (*Controller, *apitest.Fake) {
	t.Helper()
	f := apitest.New(user, todos...)
	c := New(f, user, WithErrorTTL(0))
	t.Cleanup(c.Close)
	require.NoError(t, c.Load(context.Background()))
	drainStarted(f)
	return c, f
}

func drainStarted(f *apitest.Fake) {
	for {
		select {
		case <-f.Started():
		default:
			return
		}
	}
}

// waitStarted blocks until n calls of op have begun.
func waitStarted(t *testing.T, f *apitest.Fake, op string, n int) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for n > 0 {
		select {
		case got := <-f.Started():
			if got == op {
				n--
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %d more %s call(s)", n, op)
		}
	}
}

// async runs fn in a goroutine and returns a func that waits for its error.
func async(fn func() error) func() error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	return func() error { return <-done }
}

func titles(todos []model.Todo) []string {
	out := []string{}
	for _, t := range todos {
		out = append(out, t.Title)
	}
	return out
}

func countPending(todos []model.Todo) int {
	n := 0
	for _, t := range todos {
		if t.Pending() {
			n++
		}
	}
	return n
}

func TestLoad(t *testing.T) {
	c, _ := setup(t, todo(1, "A", false), todo(2, "B", true))
	s := c.State()
	assert.True(t, s.Loaded)
	assert.Equal(t, []string{"A", "B"}, titles(s.Todos))
	assert.Equal(t, 1, s.Remaining)
	assert.Len(t, s.Completed, 1)
	assert.Empty(t, s.Error)
}

func TestLoadFailure(t *testing.T) {
	f := apitest.New(user, todo(1, "A", false))
	f.FailList()
	c := New(f, user, WithErrorTTL(0))
	defer c.Close()

	err := c.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apitest.ErrInjected))

	s := c.State()
	assert.Equal(t, MsgLoad, s.Error)
	assert.False(t, s.Loaded)
	assert.Empty(t, s.Todos)
	assert.Equal(t, 1, f.Calls(apitest.OpList), "load is not retried")
}

func TestErrorExpires(t *testing.T) {
	f := apitest.New(user)
	f.FailList()
	c := New(f, user, WithErrorTTL(30*time.Millisecond))
	defer c.Close()

	_ = c.Load(context.Background())
	assert.Equal(t, MsgLoad, c.State().Error)
	assert.Eventually(t, func() bool { return c.State().Error == "" }, time.Second, 5*time.Millisecond)
}

func TestNewerErrorRestartsExpiry(t *testing.T) {
	f := apitest.New(user, todo(1, "A", false))
	c := New(f, user, WithErrorTTL(150*time.Millisecond))
	defer c.Close()
	require.NoError(t, c.Load(context.Background()))

	f.FailDelete(1)
	f.FailUpdate(1)
	_ = c.Delete(context.Background(), 1)
	time.Sleep(100 * time.Millisecond)
	_ = c.ToggleOne(context.Background(), 1)

	// The first timer would have fired by now; the second has not.
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, MsgUpdate, c.State().Error)
	assert.Eventually(t, func() bool { return c.State().Error == "" }, time.Second, 5*time.Millisecond)
}

func TestDismissError(t *testing.T) {
	c, f := setup(t, todo(1, "A", false))
	f.FailDelete(1)
	_ = c.Delete(context.Background(), 1)
	require.Equal(t, MsgDelete, c.State().Error)

	c.DismissError()
	assert.Empty(t, c.State().Error)
}

func TestSubmitBlankTitle(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		c, f := setup(t)
		before := f.TotalCalls()

		_, err := c.Submit(context.Background(), title)
		assert.ErrorIs(t, err, ErrEmptyTitle)
		assert.Equal(t, MsgEmptyTitle, c.State().Error)
		assert.Equal(t, before, f.TotalCalls(), "no network call for %q", title)
		assert.Empty(t, c.State().Todos)
	}
}

func TestSubmitClearsPreviousError(t *testing.T) {
	c, f := setup(t, todo(1, "A", false))
	f.FailDelete(1)
	_ = c.Delete(context.Background(), 1)
	require.Equal(t, MsgDelete, c.State().Error)

	_, err := c.Submit(context.Background(), "B")
	require.NoError(t, err)
	assert.Empty(t, c.State().Error)
}

func TestCreateTrimsAndReplacesPlaceholder(t *testing.T) {
	c, f := setup(t)
	f.SetNextID(5)

	created, err := c.Submit(context.Background(), "  Buy milk  ")
	require.NoError(t, err)
	assert.Equal(t, todo(5, "Buy milk", false), created)

	s := c.State()
	assert.Equal(t, []model.Todo{todo(5, "Buy milk", false)}, s.Todos)
	assert.Zero(t, countPending(s.Todos))
	assert.Empty(t, s.Loading)
}

func TestCreateShowsSinglePlaceholderWhileInFlight(t *testing.T) {
	c, f := setup(t, todo(1, "A", false))
	release := f.Hold()
	wait := async(func() error {
		_, err := c.Create(context.Background(), "B")
		return err
	})
	waitStarted(t, f, apitest.OpCreate, 1)

	s := c.State()
	require.Len(t, s.Todos, 2)
	ph := s.Todos[1]
	assert.True(t, ph.Pending())
	assert.Equal(t, 0, ph.ID)
	assert.Equal(t, "B", ph.Title)
	assert.True(t, s.IsLoading(ph.Key()))
	assert.Equal(t, 1, s.Remaining, "placeholder is not counted")

	_, err := c.Create(context.Background(), "C")
	assert.ErrorIs(t, err, ErrCreatePending)
	assert.Equal(t, 1, countPending(c.State().Todos))

	release()
	require.NoError(t, wait())
	s = c.State()
	assert.Equal(t, []string{"A", "B"}, titles(s.Todos))
	assert.Zero(t, countPending(s.Todos))
	assert.Empty(t, s.Loading)
}

func TestCreateFailure(t *testing.T) {
	c, f := setup(t, todo(1, "A", false))
	f.FailCreate()

	_, err := c.Submit(context.Background(), "B")
	require.Error(t, err)
	assert.ErrorIs(t, err, apitest.ErrInjected)

	s := c.State()
	assert.Equal(t, MsgAdd, s.Error)
	assert.Equal(t, []string{"A"}, titles(s.Todos))
	assert.Empty(t, s.Loading)
}

func TestToggleOne(t *testing.T) {
	c, f := setup(t, todo(1, "A", false), todo(2, "B", false))

	require.NoError(t, c.ToggleOne(context.Background(), 1))
	s := c.State()
	assert.True(t, s.Todos[0].Completed)
	assert.False(t, s.Todos[1].Completed)
	assert.Equal(t, []model.Todo{todo(1, "A", true)}, f.Updates())
}

func TestToggleOneUnknownIDIsNoop(t *testing.T) {
	c, f := setup(t, todo(1, "A", false))
	require.NoError(t, c.ToggleOne(context.Background(), 99))
	assert.Zero(t, f.Calls(apitest.OpUpdate))
}

func TestToggleOneFailureLeavesCollection(t *testing.T) {
	c, f := setup(t, todo(1, "A", false))
	f.FailUpdate(1)

	err := c.ToggleOne(context.Background(), 1)
	require.Error(t, err)

	s := c.State()
	assert.Equal(t, MsgUpdate, s.Error)
	assert.Equal(t, []model.Todo{todo(1, "A", false)}, s.Todos)
	assert.Empty(t, s.Loading)
}

func TestToggleOneIsNotAppliedBeforeConfirmation(t *testing.T) {
	c, f := setup(t, todo(1, "A", false))
	release := f.Hold()
	wait := async(func() error { return c.ToggleOne(context.Background(), 1) })
	waitStarted(t, f, apitest.OpUpdate, 1)

	s := c.State()
	assert.False(t, s.Todos[0].Completed)
	assert.True(t, s.IsLoading(model.Persisted(1)))

	release()
	require.NoError(t, wait())
	s = c.State()
	assert.True(t, s.Todos[0].Completed)
	assert.False(t, s.IsLoading(model.Persisted(1)))
}

func TestToggleAllCompletesOnlyActive(t *testing.T) {
	c, f := setup(t, todo(1, "A", false), todo(2, "B", true), todo(3, "C", false))

	require.NoError(t, c.ToggleAll(context.Background()))

	sent := map[int]bool{}
	for _, u := range f.Updates() {
		assert.True(t, u.Completed)
		sent[u.ID] = true
	}
	assert.Equal(t, map[int]bool{1: true, 3: true}, sent)

	s := c.State()
	for _, td := range s.Todos {
		assert.True(t, td.Completed, td.Title)
	}
	assert.True(t, s.AllCompleted)
	assert.False(t, s.TogglingAll)
	assert.Empty(t, s.Loading)
}

func TestToggleAllUncompletesWhenAllDone(t *testing.T) {
	c, f := setup(t, todo(1, "A", true), todo(2, "B", true))

	require.NoError(t, c.ToggleAll(context.Background()))

	assert.Len(t, f.Updates(), 2)
	for _, u := range f.Updates() {
		assert.False(t, u.Completed)
	}
	for _, td := range c.State().Todos {
		assert.False(t, td.Completed)
	}
}

func TestToggleAllFailureAppliesNothing(t *testing.T) {
	c, f := setup(t, todo(1, "A", false), todo(2, "B", false), todo(3, "C", false))
	f.FailUpdate(2)

	err := c.ToggleAll(context.Background())
	require.Error(t, err)

	// Every launched call ran even though one failed.
	assert.Equal(t, 3, f.Calls(apitest.OpUpdate))

	s := c.State()
	assert.Equal(t, MsgUpdateAll, s.Error)
	for _, td := range s.Todos {
		assert.False(t, td.Completed, td.Title)
	}
	assert.Empty(t, s.Loading)
	assert.False(t, s.TogglingAll)
}

func TestToggleAllMarksExactlySentRows(t *testing.T) {
	c, f := setup(t, todo(1, "A", false), todo(2, "B", true))
	release := f.Hold()
	wait := async(func() error { return c.ToggleAll(context.Background()) })
	waitStarted(t, f, apitest.OpUpdate, 1)

	s := c.State()
	assert.True(t, s.TogglingAll)
	assert.Equal(t, map[model.Key]bool{model.Persisted(1): true}, s.Loading)

	release()
	require.NoError(t, wait())
}

func TestDelete(t *testing.T) {
	c, _ := setup(t, todo(1, "A", false), todo(2, "B", false))
	require.NoError(t, c.Delete(context.Background(), 1))
	assert.Equal(t, []string{"B"}, titles(c.State().Todos))
}

func TestDeleteFailure(t *testing.T) {
	c, f := setup(t, todo(1, "A", false))
	f.FailDelete(1)

	require.Error(t, c.Delete(context.Background(), 1))
	s := c.State()
	assert.Equal(t, MsgDelete, s.Error)
	assert.Equal(t, []string{"A"}, titles(s.Todos))
	assert.Empty(t, s.Loading)
}

func TestSequenceOfSuccessfulOperations(t *testing.T) {
	c, _ := setup(t, todo(1, "A", false), todo(2, "B", false), todo(3, "C", true), todo(4, "D", false))
	ctx := context.Background()

	require.NoError(t, c.ToggleOne(ctx, 1))
	require.NoError(t, c.Delete(ctx, 2))
	require.NoError(t, c.ToggleOne(ctx, 3))
	require.NoError(t, c.ToggleOne(ctx, 1))
	require.NoError(t, c.ToggleOne(ctx, 4))
	require.NoError(t, c.Delete(ctx, 3))

	assert.Equal(t, []model.Todo{todo(1, "A", false), todo(4, "D", true)}, c.State().Todos)
}

func TestStartEditDiscardsPreviousSession(t *testing.T) {
	c, _ := setup(t, todo(1, "A", false), todo(2, "B", false))

	require.True(t, c.StartEdit(1))
	c.SetDraft("A changed")
	require.True(t, c.StartEdit(2))

	s := c.State()
	require.NotNil(t, s.Edit)
	assert.Equal(t, EditSession{ID: 2, Draft: "B"}, *s.Edit)
	assert.True(t, s.Editing(2))
	assert.False(t, s.Editing(1))

	assert.False(t, c.StartEdit(42))
	assert.Equal(t, 2, c.State().Edit.ID)
}

func TestCancelEditTouchesNothing(t *testing.T) {
	c, f := setup(t, todo(1, "A", false))
	c.StartEdit(1)
	c.SetDraft("changed")
	c.CancelEdit()

	s := c.State()
	assert.Nil(t, s.Edit)
	assert.Equal(t, []model.Todo{todo(1, "A", false)}, s.Todos)
	assert.Equal(t, 1, f.TotalCalls(), "only the initial load")
}

func TestSaveEditWithoutSessionIsNoop(t *testing.T) {
	c, f := setup(t, todo(1, "A", false))
	require.NoError(t, c.SaveEdit(context.Background()))
	assert.Equal(t, 1, f.TotalCalls())
}

func TestSaveEditUnchangedTitle(t *testing.T) {
	c, f := setup(t, todo(1, "A", false))
	c.StartEdit(1)
	c.SetDraft("  A ")
	before := f.TotalCalls()

	require.NoError(t, c.SaveEdit(context.Background()))
	assert.Equal(t, before, f.TotalCalls())
	assert.Nil(t, c.State().Edit)
}

func TestSaveEditRenames(t *testing.T) {
	c, f := setup(t, todo(1, "A", false), todo(2, "B", false))
	c.StartEdit(1)
	c.SetDraft("  Renamed ")

	require.NoError(t, c.SaveEdit(context.Background()))
	s := c.State()
	assert.Nil(t, s.Edit)
	assert.Equal(t, []string{"Renamed", "B"}, titles(s.Todos))
	assert.Equal(t, []model.Todo{todo(1, "Renamed", false)}, f.Updates())
	assert.Empty(t, s.Loading)
}

func TestSaveEditRenameFailureKeepsSession(t *testing.T) {
	c, f := setup(t, todo(1, "A", false))
	f.FailUpdate(1)
	c.StartEdit(1)
	c.SetDraft("New")

	require.Error(t, c.SaveEdit(context.Background()))
	s := c.State()
	assert.Equal(t, MsgUpdate, s.Error)
	require.NotNil(t, s.Edit)
	assert.Equal(t, "New", s.Edit.Draft)
	assert.Equal(t, []string{"A"}, titles(s.Todos))
}

func TestSaveEditRenameReplacesLoadingSet(t *testing.T) {
	c, f := setup(t, todo(1, "A", false), todo(2, "B", false))
	release := f.Hold()

	toggled := async(func() error { return c.ToggleOne(context.Background(), 2) })
	waitStarted(t, f, apitest.OpUpdate, 1)
	require.True(t, c.State().IsLoading(model.Persisted(2)))

	c.StartEdit(1)
	c.SetDraft("A2")
	saved := async(func() error { return c.SaveEdit(context.Background()) })
	waitStarted(t, f, apitest.OpUpdate, 1)

	assert.Equal(t, map[model.Key]bool{model.Persisted(1): true}, c.State().Loading)

	release()
	require.NoError(t, toggled())
	require.NoError(t, saved())
	assert.Empty(t, c.State().Loading)
}

func TestSaveEditBlankDeletes(t *testing.T) {
	c, f := setup(t, todo(1, "A", false), todo(2, "B", false))
	c.StartEdit(1)
	c.SetDraft("   ")

	require.NoError(t, c.SaveEdit(context.Background()))
	s := c.State()
	assert.Nil(t, s.Edit)
	assert.Equal(t, []string{"B"}, titles(s.Todos))
	assert.Equal(t, 1, f.Calls(apitest.OpDelete))
	assert.Zero(t, f.Calls(apitest.OpUpdate))
}

func TestSaveEditBlankDeleteFailureKeepsSession(t *testing.T) {
	c, f := setup(t, todo(1, "A", false))
	f.FailDelete(1)
	c.StartEdit(1)
	c.SetDraft("")

	require.Error(t, c.SaveEdit(context.Background()))
	s := c.State()
	assert.Equal(t, MsgDelete, s.Error)
	require.NotNil(t, s.Edit)
	assert.Equal(t, 1, s.Edit.ID)
	assert.Equal(t, []string{"A"}, titles(s.Todos))
}

func TestSaveEditVanishedRecord(t *testing.T) {
	c, f := setup(t, todo(1, "A", false))
	c.StartEdit(1)
	c.SetDraft("B")
	require.NoError(t, c.Delete(context.Background(), 1))
	before := f.TotalCalls()

	require.NoError(t, c.SaveEdit(context.Background()))
	assert.Equal(t, before, f.TotalCalls())
}

func TestClearCompletedPartialFailure(t *testing.T) {
	c, f := setup(t, todo(1, "A", false), todo(2, "B", true), todo(3, "C", true))
	f.FailDelete(3)

	err := c.ClearCompleted(context.Background())
	require.Error(t, err)

	s := c.State()
	assert.Equal(t, []string{"A", "C"}, titles(s.Todos))
	assert.Equal(t, MsgDelete, s.Error)
	assert.Empty(t, s.Loading)
	assert.Equal(t, 2, f.Calls(apitest.OpDelete))
}

func TestClearCompletedMarksCompletedRows(t *testing.T) {
	c, f := setup(t, todo(1, "A", false), todo(2, "B", true), todo(3, "C", true))
	release := f.Hold()
	wait := async(func() error { return c.ClearCompleted(context.Background()) })
	waitStarted(t, f, apitest.OpDelete, 2)

	assert.Equal(t, map[model.Key]bool{
		model.Persisted(2): true,
		model.Persisted(3): true,
	}, c.State().Loading)

	release()
	require.NoError(t, wait())
	s := c.State()
	assert.Equal(t, []string{"A"}, titles(s.Todos))
	assert.Empty(t, s.Loading)
}

func TestClearCompletedNothingToDo(t *testing.T) {
	c, f := setup(t, todo(1, "A", false))
	require.NoError(t, c.ClearCompleted(context.Background()))
	assert.Zero(t, f.Calls(apitest.OpDelete))
}

func TestFilterView(t *testing.T) {
	c, _ := setup(t, todo(1, "A", false), todo(2, "B", true))

	c.SetFilter(model.FilterActive)
	assert.Equal(t, []string{"A"}, titles(c.State().Visible))
	c.SetFilter(model.FilterCompleted)
	assert.Equal(t, []string{"B"}, titles(c.State().Visible))
	c.SetFilter(model.FilterAll)
	assert.Equal(t, []string{"A", "B"}, titles(c.State().Visible))
	assert.Len(t, c.State().Todos, 2, "filtering never mutates the collection")
}

func TestChangesNotifies(t *testing.T) {
	c, _ := setup(t, todo(1, "A", false))
	drain := func() {
		select {
		case <-c.Changes():
		default:
		}
	}
	drain()

	c.SetFilter(model.FilterActive)
	select {
	case <-c.Changes():
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	c, _ := setup(t, todo(1, "A", false))
	s := c.State()
	s.Todos[0].Title = "mutated"
	s.Loading[model.Persisted(1)] = true
	assert.Equal(t, "A", c.State().Todos[0].Title)
	assert.Empty(t, c.State().Loading)
}
