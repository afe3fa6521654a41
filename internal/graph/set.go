package graph

import "sort"

// nameSet is a sorted set of artifact keys. Iteration order is lexical so
// traversals are reproducible.
type nameSet struct {
	items []string
}

func (s *nameSet) Add(name string) bool {
	i := sort.SearchStrings(s.items, name)
	if i < len(s.items) && s.items[i] == name {
		return false
	}
	s.items = append(s.items, "")
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = name
	return true
}

func (s *nameSet) Has(name string) bool {
	i := sort.SearchStrings(s.items, name)
	return i < len(s.items) && s.items[i] == name
}

func (s *nameSet) Len() int {
	return len(s.items)
}

// Items returns a copy of the set contents in lexical order.
func (s *nameSet) Items() []string {
	if len(s.items) == 0 {
		return nil
	}
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
