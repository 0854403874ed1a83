// Package api talks to the remote todo service.
//
// The service is a plain REST resource:
//
//	GET    /todos?userId=N   list
//	POST   /todos            create, echoes the stored record
//	PATCH  /todos/{id}       update, echoes the stored record
//	DELETE /todos/{id}       delete
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/idilsaglam/todo-remote/internal/model"
)

// Service is the contract the controller consumes. Failures carry no
// machine-readable payload; callers only distinguish success from failure.
type Service interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, n model.NewTodo) (model.Todo, error)
	Update(ctx context.Context, t model.Todo) (model.Todo, error)
	Delete(ctx context.Context, id int) error
}

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}
