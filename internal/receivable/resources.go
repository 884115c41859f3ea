package receivable

import (
	"errors"
	"fmt"
)

var ErrIndexOutOfRange = errors.New("resource index out of range")

// ResourceList is an ordered collection of opaque resource references.
type ResourceList struct {
	refs []string
}

// Append adds a batch after the existing entries, keeping arrival order.
func (l *ResourceList) Append(refs ...string) {
	l.refs = append(l.refs, refs...)
}

// RemoveAt drops the entry at i and shifts the rest down by one.
func (l *ResourceList) RemoveAt(i int) error {
	if i < 0 || i >= len(l.refs) {
		return fmt.Errorf("remove %d of %d: %w", i, len(l.refs), ErrIndexOutOfRange)
	}
	l.refs = append(l.refs[:i:i], l.refs[i+1:]...)
	return nil
}

func (l *ResourceList) Len() int {
	return len(l.refs)
}

// Refs returns a copy; nil when the list is empty.
func (l *ResourceList) Refs() []string {
	if len(l.refs) == 0 {
		return nil
	}
	out := make([]string, len(l.refs))
	copy(out, l.refs)
	return out
}
