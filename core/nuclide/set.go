package nuclide

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/foilact/internal/contract"
)

var namePattern = regexp.MustCompile(`^([a-zA-Z]+)-(\d+)m?$`)

// Set is an ordered collection of nuclides with lookup by name.
type Set struct {
	items []*Nuclide
	index map[string]int
}

// NewSet returns a set holding the given nuclides in order.
func NewSet(nuclides ...*Nuclide) (*Set, error) {
	s := &Set{index: make(map[string]int, len(nuclides))}
	for _, n := range nuclides {
		if err := s.Add(n); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends a nuclide. Names must be unique.
func (s *Set) Add(n *Nuclide) error {
	if _, dup := s.index[n.Name]; dup {
		return fmt.Errorf("%w: nuclide %s added twice", contract.ErrValidation, n.Name)
	}
	s.index[n.Name] = len(s.items)
	s.items = append(s.items, n)
	return nil
}

// Get looks up a nuclide by name.
func (s *Set) Get(name string) (*Nuclide, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.items[i], true
}

// Len returns the number of nuclides.
func (s *Set) Len() int { return len(s.items) }

// All returns the nuclides in order.
func (s *Set) All() []*Nuclide { return s.items }

// Names returns the nuclide names in order.
func (s *Set) Names() []string {
	out := make([]string, len(s.items))
	for i, n := range s.items {
		out[i] = n.Name
	}
	return out
}

// Select returns clones of the named nuclides, keeping the set order. Names that are
// not in the set are ignored.
func (s *Set) Select(names []string) *Set {
	out := &Set{index: make(map[string]int)}
	for _, n := range s.items {
		if slices.Contains(names, n.Name) {
			_ = out.Add(n.Clone())
		}
	}
	return out
}

// Clone returns a set of fresh copies.
func (s *Set) Clone() *Set {
	return s.Select(s.Names())
}

// SortByElement orders the set by atomic number, then mass number.
func (s *Set) SortByElement() {
	slices.SortStableFunc(s.items, func(a, b *Nuclide) int {
		za, ma := ElementOrder(a.Name)
		zb, mb := ElementOrder(b.Name)
		return cmp.Or(cmp.Compare(za, zb), cmp.Compare(ma, mb))
	})
	for i, n := range s.items {
		s.index[n.Name] = i
	}
}

// ElementOrder returns the atomic and mass number encoded in a name like "Zr-89".
// Unknown symbols sort after every element.
func ElementOrder(name string) (int, int) {
	m := namePattern.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return len(elementSymbols) + 1, 0
	}
	mass, _ := strconv.Atoi(m[2])
	z, ok := atomicNumbers[strings.ToLower(m[1])]
	if !ok {
		return len(elementSymbols) + 1, mass
	}
	return z, mass
}
