package controller

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/idilsaglam/todo-remote/internal/model"
)

// settle runs fn for every index concurrently and waits for all of them.
// It never short-circuits: a failure does not stop or cancel the others.
func settle(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	errs := make([]error, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			errs[i] = fn(ctx, i)
			return errs[i]
		})
	}
	_ = g.Wait()
	return multierr.Combine(errs...)
}

// ToggleAll moves every todo to one completion state: completed unless all
// already are. Only todos not yet in that state are sent. The collection is
// updated only when every call succeeded.
func (c *Controller) ToggleAll(ctx context.Context) error {
	c.mu.Lock()
	target := !model.AllCompleted(c.todos)
	var batch []model.Todo
	keys := map[model.Key]struct{}{}
	for _, t := range c.todos {
		if t.Pending() || t.Completed == target {
			continue
		}
		t.Completed = target
		batch = append(batch, t)
		keys[t.Key()] = struct{}{}
	}
	c.loading = keys
	c.togglingAll = true
	c.mu.Unlock()
	c.notify()

	err := settle(ctx, len(batch), func(ctx context.Context, i int) error {
		_, err := c.svc.Update(ctx, batch[i])
		return err
	})

	c.mu.Lock()
	for _, t := range batch {
		delete(c.loading, t.Key())
	}
	c.togglingAll = false
	if err != nil {
		c.setErrorLocked(MsgUpdateAll)
	} else {
		for i := range c.todos {
			if !c.todos[i].Pending() {
				c.todos[i].Completed = target
			}
		}
	}
	c.mu.Unlock()
	c.notify()

	if err != nil {
		c.log.Warn("toggle all failed", "target", target, "sent", len(batch), "failed", len(multierr.Errors(err)))
		return fmt.Errorf("toggle all: %w", err)
	}
	c.log.Debug("toggled all", "target", target, "sent", len(batch))
	return nil
}

// ClearCompleted deletes every completed todo in parallel. Each success is
// applied as it lands; failures leave their todo in place and set the
// message, without holding back the others.
func (c *Controller) ClearCompleted(ctx context.Context) error {
	c.mu.Lock()
	var ids []int
	keys := map[model.Key]struct{}{}
	for _, t := range c.todos {
		if t.Completed && !t.Pending() {
			ids = append(ids, t.ID)
			keys[t.Key()] = struct{}{}
		}
	}
	c.loading = keys
	c.mu.Unlock()
	c.notify()

	err := settle(ctx, len(ids), func(ctx context.Context, i int) error {
		id := ids[i]
		err := c.svc.Delete(ctx, id)
		c.mu.Lock()
		if err != nil {
			c.setErrorLocked(MsgDelete)
		} else {
			c.removeLocked(model.Persisted(id))
		}
		c.mu.Unlock()
		c.notify()
		if err != nil {
			return fmt.Errorf("delete todo %d: %w", id, err)
		}
		return nil
	})

	c.mu.Lock()
	c.loading = map[model.Key]struct{}{}
	c.mu.Unlock()
	c.notify()

	if err != nil {
		c.log.Warn("clear completed failed", "requested", len(ids), "failed", len(multierr.Errors(err)))
		return fmt.Errorf("clear completed: %w", err)
	}
	c.log.Debug("cleared completed", "count", len(ids))
	return nil
}
