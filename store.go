package gatedbloom

import (
	"iter"
	"maps"
	"slices"
)

// Store is the physical collection behind a gated collection. The gate only
// prunes queries; the store gives the authoritative answer.
type Store[T comparable] interface {
	// Add inserts item and reports whether the store changed.
	Add(item T) bool
	// Remove deletes one occurrence of item and reports whether it was found.
	Remove(item T) bool
	Contains(item T) bool
	Len() int
	Clear()
	All() iter.Seq[T]
	// DeleteFunc removes every element for which del returns true and
	// returns how many were removed.
	DeleteFunc(del func(T) bool) int
}

// ListStore is an insertion-ordered store that permits duplicates.
type ListStore[T comparable] struct {
	items []T
}

// NewListStore returns a list store holding a copy of items.
func NewListStore[T comparable](items ...T) *ListStore[T] {
	return &ListStore[T]{items: slices.Clone(items)}
}

func (l *ListStore[T]) Add(item T) bool {
	l.items = append(l.items, item)
	return true
}

func (l *ListStore[T]) Remove(item T) bool {
	i := slices.Index(l.items, item)
	if i < 0 {
		return false
	}
	l.items = slices.Delete(l.items, i, i+1)
	return true
}

func (l *ListStore[T]) Contains(item T) bool { return slices.Contains(l.items, item) }
func (l *ListStore[T]) Len() int             { return len(l.items) }
func (l *ListStore[T]) All() iter.Seq[T]     { return slices.Values(l.items) }

func (l *ListStore[T]) Clear() {
	clear(l.items)
	l.items = l.items[:0]
}

func (l *ListStore[T]) DeleteFunc(del func(T) bool) int {
	before := len(l.items)
	l.items = slices.DeleteFunc(l.items, del)
	return before - len(l.items)
}

// SetStore is an unordered store that rejects duplicates.
type SetStore[T comparable] struct {
	items map[T]struct{}
}

// NewSetStore returns a set store holding items.
func NewSetStore[T comparable](items ...T) *SetStore[T] {
	s := &SetStore[T]{items: make(map[T]struct{}, len(items))}
	for _, item := range items {
		s.items[item] = struct{}{}
	}
	return s
}

func (s *SetStore[T]) Add(item T) bool {
	if _, ok := s.items[item]; ok {
		return false
	}
	s.items[item] = struct{}{}
	return true
}

func (s *SetStore[T]) Remove(item T) bool {
	if _, ok := s.items[item]; !ok {
		return false
	}
	delete(s.items, item)
	return true
}

func (s *SetStore[T]) Contains(item T) bool {
	_, ok := s.items[item]
	return ok
}

func (s *SetStore[T]) Len() int         { return len(s.items) }
func (s *SetStore[T]) Clear()           { clear(s.items) }
func (s *SetStore[T]) All() iter.Seq[T] { return maps.Keys(s.items) }

func (s *SetStore[T]) DeleteFunc(del func(T) bool) int {
	before := len(s.items)
	maps.DeleteFunc(s.items, func(k T, _ struct{}) bool { return del(k) })
	return before - len(s.items)
}
