package listview

import "slices"

// SelectionSet is the set of record ids checked for a bulk operation.
// Insertion order is kept so requests list ids the way they were picked.
type SelectionSet struct {
	order []string
	index map[string]struct{}
}

// NewSelectionSet creates an empty selection.
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{index: make(map[string]struct{})}
}

// Has reports whether id is selected.
func (s *SelectionSet) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Len returns the number of selected ids.
func (s *SelectionSet) Len() int {
	return len(s.order)
}

// IDs returns the selected ids in selection order.
func (s *SelectionSet) IDs() []string {
	return slices.Clone(s.order)
}

// Toggle selects id if absent and deselects it otherwise. It returns
// whether id is selected afterwards.
func (s *SelectionSet) Toggle(id string) bool {
	if s.Has(id) {
		s.remove(id)
		return false
	}
	s.add(id)
	return true
}

// SelectAll toggles between nothing and every loaded id. If the selection
// already holds every loaded id it is cleared, otherwise it becomes exactly
// the loaded ids.
func (s *SelectionSet) SelectAll(loaded []string) {
	if len(loaded) > 0 && s.covers(loaded) {
		s.Clear()
		return
	}
	s.Clear()
	for _, id := range loaded {
		s.add(id)
	}
}

// Retain drops ids that are not in loaded and returns how many were dropped.
func (s *SelectionSet) Retain(loaded []string) int {
	keep := toSet(loaded)
	dropped := 0
	for _, id := range s.IDs() {
		if _, ok := keep[id]; !ok {
			s.remove(id)
			dropped++
		}
	}
	return dropped
}

// Clear empties the selection.
func (s *SelectionSet) Clear() {
	s.order = nil
	s.index = make(map[string]struct{})
}

func (s *SelectionSet) covers(loaded []string) bool {
	if len(s.order) != len(toSet(loaded)) {
		return false
	}
	for _, id := range loaded {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

func (s *SelectionSet) add(id string) {
	if s.Has(id) {
		return
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *SelectionSet) remove(id string) {
	delete(s.index, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
}
