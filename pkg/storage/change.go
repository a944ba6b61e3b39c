package storage

import "fmt"

type Kind int

const (
	Created Kind = iota + 1
	Updated
	Deleted
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "CREATED"
	case Updated:
		return "UPDATED"
	case Deleted:
		return "DELETED"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Change is handed to callbacks when the backing file of a handle changes.
type Change struct {
	Kind Kind
	Name string
	Path string
}

func (c Change) String() string {
	return fmt.Sprintf("%-8s %q", c.Kind, c.Path)
}

// Callback
// registrations are deduplicated by pointer, keep the value returned by
// NewCallback to register the same callback again.
type Callback struct {
	fn func(c Change)
}

func NewCallback(fn func(c Change)) *Callback {
	return &Callback{fn: fn}
}
