package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/idilsaglam/todo-remote/internal/model"
)

// StartEdit opens an edit session on id with its current title as draft.
// Any open session is discarded. It reports false for unknown ids.
func (c *Controller) StartEdit(id int) bool {
	c.mu.Lock()
	t, ok := c.findLocked(id)
	if ok {
		c.edit = &EditSession{ID: id, Draft: t.Title}
	}
	c.mu.Unlock()
	if ok {
		c.notify()
	}
	return ok
}

// SetDraft replaces the draft title of the open session.
func (c *Controller) SetDraft(draft string) {
	c.mu.Lock()
	if c.edit == nil {
		c.mu.Unlock()
		return
	}
	c.edit.Draft = draft
	c.mu.Unlock()
	c.notify()
}

// CancelEdit closes the session without touching any record.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	c.edit = nil
	c.mu.Unlock()
	c.notify()
}

// SaveEdit commits the open session. A blank draft deletes the todo, an
// unchanged draft just closes the session, anything else is sent as a
// rename. On failure the session stays open with the draft intact.
func (c *Controller) SaveEdit(ctx context.Context) error {
	c.mu.Lock()
	if c.edit == nil {
		c.mu.Unlock()
		return nil
	}
	sess := *c.edit
	t, ok := c.findLocked(sess.ID)
	if !ok {
		c.mu.Unlock()
		return nil
	}
	title := strings.TrimSpace(sess.Draft)

	switch {
	case title == "":
		c.mu.Unlock()
		return c.remove(ctx, sess.ID, func() { c.closeEditLocked(sess.ID) })
	case title == t.Title:
		c.edit = nil
		c.mu.Unlock()
		c.notify()
		return nil
	}

	t.Title = title
	key := model.Persisted(sess.ID)
	c.loading = map[model.Key]struct{}{key: {}}
	c.mu.Unlock()
	c.notify()

	_, err := c.svc.Update(ctx, t)

	c.mu.Lock()
	c.loading = map[model.Key]struct{}{}
	if err != nil {
		c.setErrorLocked(MsgUpdate)
	} else {
		for i := range c.todos {
			if !c.todos[i].Pending() && c.todos[i].ID == sess.ID {
				c.todos[i].Title = title
			}
		}
		c.closeEditLocked(sess.ID)
	}
	c.mu.Unlock()
	c.notify()

	if err != nil {
		c.log.Warn("rename failed", "id", sess.ID, "err", err)
		return fmt.Errorf("rename todo %d: %w", sess.ID, err)
	}
	return nil
}

// closeEditLocked closes the session if it still belongs to id.
func (c *Controller) closeEditLocked(id int) {
	if c.edit != nil && c.edit.ID == id {
		c.edit = nil
	}
}
