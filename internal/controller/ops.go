package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/idilsaglam/todo-remote/internal/model"
)

// Load fetches the collection once and replaces the local one on success.
// It is not retried.
func (c *Controller) Load(ctx context.Context) error {
	todos, err := c.svc.List(ctx)

	c.mu.Lock()
	if err != nil {
		c.setErrorLocked(MsgLoad)
	} else {
		c.todos = todos
		c.loaded = true
	}
	c.mu.Unlock()
	c.notify()

	if err != nil {
		c.log.Warn("load failed", "err", err)
		return fmt.Errorf("load todos: %w", err)
	}
	c.log.Debug("loaded", "count", len(todos))
	return nil
}

// Submit is the entry bar contract: it clears the current message, rejects
// blank titles without touching the network, and otherwise creates.
func (c *Controller) Submit(ctx context.Context, title string) (model.Todo, error) {
	c.mu.Lock()
	c.clearErrorLocked()
	blank := strings.TrimSpace(title) == ""
	if blank {
		c.setErrorLocked(MsgEmptyTitle)
	}
	c.mu.Unlock()
	c.notify()

	if blank {
		return model.Todo{}, ErrEmptyTitle
	}
	return c.Create(ctx, title)
}

// Create shows a placeholder for title right away and swaps it for the
// stored record once the service answers. The placeholder is dropped on
// failure too, and the failure is returned to the caller.
func (c *Controller) Create(ctx context.Context, title string) (model.Todo, error) {
	n := model.NewTodo{UserID: c.userID, Title: strings.TrimSpace(title)}
	ph := model.Placeholder(n)
	key := ph.Key()

	c.mu.Lock()
	if c.hasPlaceholderLocked() {
		c.mu.Unlock()
		return model.Todo{}, ErrCreatePending
	}
	c.todos = append(c.todos, ph)
	c.loading[key] = struct{}{}
	c.mu.Unlock()
	c.notify()

	created, err := c.svc.Create(ctx, n)

	c.mu.Lock()
	c.removeLocked(key)
	delete(c.loading, key)
	if err != nil {
		c.setErrorLocked(MsgAdd)
	} else {
		c.todos = append(c.todos, created)
	}
	c.mu.Unlock()
	c.notify()

	if err != nil {
		c.log.Warn("create failed", "title", n.Title, "err", err)
		return model.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	c.log.Debug("created", "id", created.ID)
	return created, nil
}

// ToggleOne flips completion of the todo with id. The flip is only sent;
// the local record changes when the service confirms it.
func (c *Controller) ToggleOne(ctx context.Context, id int) error {
	c.mu.Lock()
	t, ok := c.findLocked(id)
	if !ok {
		c.mu.Unlock()
		return nil
	}
	t.Completed = !t.Completed
	key := model.Persisted(id)
	c.loading[key] = struct{}{}
	c.mu.Unlock()
	c.notify()

	updated, err := c.svc.Update(ctx, t)

	c.mu.Lock()
	delete(c.loading, key)
	if err != nil {
		c.setErrorLocked(MsgUpdate)
	} else {
		c.replaceLocked(updated)
	}
	c.mu.Unlock()
	c.notify()

	if err != nil {
		c.log.Warn("toggle failed", "id", id, "err", err)
		return fmt.Errorf("toggle todo %d: %w", id, err)
	}
	return nil
}

// Delete removes the todo with id once the service confirms it.
func (c *Controller) Delete(ctx context.Context, id int) error {
	return c.remove(ctx, id, nil)
}

// remove deletes id and runs onSuccess under the lock after the record is
// gone.
func (c *Controller) remove(ctx context.Context, id int, onSuccess func()) error {
	key := model.Persisted(id)

	c.mu.Lock()
	c.loading[key] = struct{}{}
	c.mu.Unlock()
	c.notify()

	err := c.svc.Delete(ctx, id)

	c.mu.Lock()
	delete(c.loading, key)
	if err != nil {
		c.setErrorLocked(MsgDelete)
	} else {
		c.removeLocked(key)
		if onSuccess != nil {
			onSuccess()
		}
	}
	c.mu.Unlock()
	c.notify()

	if err != nil {
		c.log.Warn("delete failed", "id", id, "err", err)
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	return nil
}
