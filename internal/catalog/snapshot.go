package catalog

import "context"

// Source produces catalog snapshots.
type Source interface {
	FetchSnapshot(ctx context.Context) (*Snapshot, error)
}

// Snapshot is an immutable read of the catalog grouped by category.
// Categories keep their first-appearance order, items keep read order.
type Snapshot struct {
	groups []Group
	index  map[string]int
	size   int
}

// NewSnapshot groups items by category.
func NewSnapshot(items []Item) *Snapshot {
	s := &Snapshot{index: make(map[string]int)}

	for _, item := range items {
		idx, ok := s.index[item.Category]
		if !ok {
			idx = len(s.groups)
			s.index[item.Category] = idx
			s.groups = append(s.groups, Group{Category: item.Category})
		}
		s.groups[idx].Items = append(s.groups[idx].Items, item)
		s.size++
	}

	return s
}

// Len returns the number of items in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return s.size
}

// IsEmpty reports whether the snapshot has no items.
func (s *Snapshot) IsEmpty() bool {
	return s.Len() == 0
}

// Categories returns category names in snapshot order.
func (s *Snapshot) Categories() []string {
	if s == nil {
		return nil
	}

	categories := make([]string, 0, len(s.groups))
	for _, group := range s.groups {
		categories = append(categories, group.Category)
	}
	return categories
}

// Items returns a copy of the items stored under category.
func (s *Snapshot) Items(category string) []Item {
	if s == nil {
		return nil
	}

	idx, ok := s.index[category]
	if !ok {
		return nil
	}

	items := make([]Item, len(s.groups[idx].Items))
	copy(items, s.groups[idx].Items)
	return items
}

// Groups returns a copy of all groups in snapshot order.
func (s *Snapshot) Groups() []Group {
	if s == nil {
		return nil
	}

	groups := make([]Group, len(s.groups))
	for i, group := range s.groups {
		items := make([]Item, len(group.Items))
		copy(items, group.Items)
		groups[i] = Group{Category: group.Category, Items: items}
	}
	return groups
}

// All returns every item in snapshot order.
func (s *Snapshot) All() []Item {
	if s == nil {
		return nil
	}

	items := make([]Item, 0, s.size)
	for _, group := range s.groups {
		items = append(items, group.Items...)
	}
	return items
}

// Lookup finds the first item with the given category and name.
func (s *Snapshot) Lookup(category, name string) (Item, bool) {
	if s == nil {
		return Item{}, false
	}

	idx, ok := s.index[category]
	if !ok {
		return Item{}, false
	}

	for _, item := range s.groups[idx].Items {
		if item.Name == name {
			return item, true
		}
	}
	return Item{}, false
}

// StaticSource serves a fixed snapshot.
type StaticSource struct {
	Snapshot *Snapshot
	Err      error
}

// FetchSnapshot returns the configured snapshot or error.
func (s *StaticSource) FetchSnapshot(ctx context.Context) (*Snapshot, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Snapshot == nil {
		return NewSnapshot(nil), nil
	}
	return s.Snapshot, nil
}
