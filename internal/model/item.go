package model

import "github.com/google/uuid"

// Todo is the domain model for a todo entry as stored by the remote service.
// ID 0 marks an optimistic placeholder that has no server identity yet;
// such a record carries its TempID instead.
type Todo struct {
	ID        int       `json:"id"`
	UserID    int       `json:"userId"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	TempID    uuid.UUID `json:"-"`
}

// NewTodo is the payload sent when creating a todo.
type NewTodo struct {
	UserID    int    `json:"userId"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Placeholder returns the optimistic row shown while a create is in flight.
func Placeholder(n NewTodo) Todo {
	return Todo{
		UserID:    n.UserID,
		Title:     n.Title,
		Completed: n.Completed,
		TempID:    NewLocalKey().local,
	}
}

// Pending reports whether the todo is a placeholder awaiting persistence.
func (t Todo) Pending() bool { return t.TempID != uuid.Nil }

// Key returns the row identity of t.
func (t Todo) Key() Key {
	if t.Pending() {
		return Key{local: t.TempID}
	}
	return Persisted(t.ID)
}
