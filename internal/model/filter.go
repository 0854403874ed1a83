package model

import (
	"fmt"
	"strings"
)

// Filter selects which todos are visible. It never mutates the collection.
type Filter int

const (
	FilterAll Filter = iota
	FilterActive
	FilterCompleted
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

func (f Filter) String() string {
	switch f {
	case FilterActive:
		return "active"
	case FilterCompleted:
		return "completed"
	default:
		return "all"
	}
}

// ParseFilter accepts the names produced by String, case-insensitively.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "active":
		return FilterActive, nil
	case "completed", "done":
		return FilterCompleted, nil
	}
	return FilterAll, fmt.Errorf("unknown filter %q (want all, active or completed)", s)
}

// Next cycles All -> Active -> Completed -> All.
func (f Filter) Next() Filter {
	return Filters[(int(f)+1)%len(Filters)]
}

// Apply returns the todos that pass f, preserving order.
func (f Filter) Apply(todos []Todo) []Todo {
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		switch f {
		case FilterActive:
			if t.Completed {
				continue
			}
		case FilterCompleted:
			if !t.Completed {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// Remaining counts todos that are neither completed nor placeholders.
func Remaining(todos []Todo) int {
	n := 0
	for _, t := range todos {
		if !t.Completed && !t.Pending() {
			n++
		}
	}
	return n
}

// CompletedItems returns the completed todos in collection order.
func CompletedItems(todos []Todo) []Todo {
	return FilterCompleted.Apply(todos)
}

// AllCompleted reports whether todos is non-empty and every item is done.
func AllCompleted(todos []Todo) bool {
	if len(todos) == 0 {
		return false
	}
	for _, t := range todos {
		if !t.Completed {
			return false
		}
	}
	return true
}
