package internal

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
)

const ExitName string = "exit"

type Op uint32

const (
	Create Op = 1 << iota
	Write
	Remove
	Rename
	Chmod
	Exit
)

type Event struct {
	Name string
	Op   Op
}

// fromFsnotify
// fsnotify ops do not share our bit layout, translate them one by one.
func fromFsnotify(e fsnotify.Event) Event {
	var op Op
	if e.Has(fsnotify.Create) {
		op |= Create
	}
	if e.Has(fsnotify.Write) {
		op |= Write
	}
	if e.Has(fsnotify.Remove) {
		op |= Remove
	}
	if e.Has(fsnotify.Rename) {
		op |= Rename
	}
	if e.Has(fsnotify.Chmod) {
		op |= Chmod
	}

	return Event{
		Name: e.Name,
		Op:   op,
	}
}

func (op Op) String() string {
	var b strings.Builder
	if op.Has(Exit) {
		b.WriteString("|EXIT_DAEMON")
	}
	if op.Has(Create) {
		b.WriteString("|CREATE")
	}
	if op.Has(Remove) {
		b.WriteString("|REMOVE")
	}
	if op.Has(Write) {
		b.WriteString("|WRITE")
	}
	if op.Has(Rename) {
		b.WriteString("|RENAME")
	}
	if op.Has(Chmod) {
		b.WriteString("|CHMOD")
	}
	if b.Len() == 0 {
		return "[no events]"
	}
	return b.String()[1:]
}

func (op Op) Has(h Op) bool { return op&h == h }

func (e Event) Has(op Op) bool { return e.Op.Has(op) }

func (e Event) IsExit() bool { return e.Op.Has(Exit) && e.Name == ExitName }

func (e Event) String() string {
	return fmt.Sprintf("%-13s %q", e.Op.String(), e.Name)
}
