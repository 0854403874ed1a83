package model

import (
	"strconv"

	"github.com/google/uuid"
)

// Key identifies a row in the collection. It is either a server id
// (Persisted) or a client-generated identity for a row that has not been
// stored yet (Local). Keys are comparable and usable as map keys.
type Key struct {
	local uuid.UUID
	id    int
}

// Persisted returns the key of a stored todo.
func Persisted(id int) Key { return Key{id: id} }

// NewLocalKey returns a fresh key for an optimistic placeholder.
func NewLocalKey() Key { return Key{local: uuid.New()} }

// IsLocal reports whether k belongs to a placeholder.
func (k Key) IsLocal() bool { return k.local != uuid.Nil }

// ID returns the server id, or 0 for local keys.
func (k Key) ID() int {
	if k.IsLocal() {
		return 0
	}
	return k.id
}

func (k Key) String() string {
	if k.IsLocal() {
		return "local:" + k.local.String()
	}
	return strconv.Itoa(k.id)
}
