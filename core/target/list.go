package target

import (
	"fmt"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
)

// List is an ordered collection of targets with lookup by identifier.
type List struct {
	items []*Target
}

// NewList builds one target per irradiation record.
func NewList(irradiations []schema.Irradiation, ref *Reference) (*List, error) {
	l := &List{}
	for _, irr := range irradiations {
		t, err := New(irr, ref)
		if err != nil {
			return nil, err
		}
		if err := l.Add(t); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add appends a target. Identifiers must be unique regardless of case.
func (l *List) Add(t *Target) error {
	if _, ok := l.Get(t.ID()); ok {
		return fmt.Errorf("%w: target %s listed twice", contract.ErrValidation, t.ID())
	}
	l.items = append(l.items, t)
	return nil
}

// Get returns the target with the given identifier.
func (l *List) Get(id string) (*Target, bool) {
	for _, t := range l.items {
		if t.Matches(id) {
			return t, true
		}
	}
	return nil, false
}

// All returns the targets in order.
func (l *List) All() []*Target { return l.items }

// Len returns the number of targets.
func (l *List) Len() int { return len(l.items) }
