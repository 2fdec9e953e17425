package gatedbloom

import (
	"iter"
	"slices"
)

// Collection couples a Store with a gate. Every item physically added is
// merged into the gate, so lookups for items whose gate does not match are
// rejected without touching the store.
//
// Removing an item never clears gate bits; Stats tracks logical deletes.
// Collection is NOT safe for concurrent mutation.
type Collection[T comparable] struct {
	store       Store[T]
	gc          *GateConfig
	fingerprint func(T) Proto
}

// NewCollection gates store with gc. Items already in store are merged into
// the gate so it reflects the current contents.
func NewCollection[T comparable](store Store[T], gc *GateConfig, fingerprint func(T) Proto) *Collection[T] {
	c := &Collection[T]{
		store:       store,
		gc:          gc,
		fingerprint: fingerprint,
	}
	for item := range store.All() {
		gc.MergeProtos(fingerprint(item))
	}
	return c
}

func (c *Collection[T]) gated() {}

// Fingerprint returns the proto of item.
func (c *Collection[T]) Fingerprint(item T) Proto { return c.fingerprint(item) }

func (c *Collection[T]) GateConfig() *GateConfig { return c.gc }
func (c *Collection[T]) Gate() *Gate             { return c.gc.Gate() }
func (c *Collection[T]) Shape() Shape            { return c.gc.Shape() }
func (c *Collection[T]) Stats() *Statistics      { return c.gc.Stats() }

func (c *Collection[T]) IsFull() bool {
	return c.Shape().Capacity() <= uint64(c.store.Len())
}

func (c *Collection[T]) Distance(g *Gate) int      { return c.Gate().Distance(g) }
func (c *Collection[T]) Matches(g *Gate) bool      { return c.Gate().Match(g) }
func (c *Collection[T]) InverseMatch(g *Gate) bool { return c.Gate().InverseMatch(g) }

// Candidates returns every item if g matches the gate, nothing otherwise.
func (c *Collection[T]) Candidates(g *Gate) iter.Seq[T] {
	if !c.Matches(g) {
		return emptySeq[T]
	}
	return c.Data()
}

func (c *Collection[T]) CandidatesFor(protos ...Proto) iter.Seq[T] {
	return c.Candidates(NewGate(c.Shape(), protos...))
}

func (c *Collection[T]) Data() iter.Seq[T] { return c.store.All() }
func (c *Collection[T]) Count() uint64     { return uint64(c.store.Len()) }

// AddProto adds item to the store and, only if the store accepted it,
// merges p into the gate.
func (c *Collection[T]) AddProto(p Proto, item T) bool {
	if !c.store.Add(item) {
		return false
	}
	c.gc.MergeProtos(p)
	return true
}

// RemoveProto removes item from the store unless the gate rules it out.
func (c *Collection[T]) RemoveProto(p Proto, item T) bool {
	if !c.Matches(NewGate(c.Shape(), p)) {
		return false
	}
	if !c.store.Remove(item) {
		return false
	}
	c.gc.Stats().Delete(1)
	return true
}

func (c *Collection[T]) ContainsProto(p Proto, item T) bool {
	return c.Matches(NewGate(c.Shape(), p)) && c.store.Contains(item)
}

// RetainProtos keeps the items of m whose fingerprints the gate may hold and
// removes everything else from the store.
func (c *Collection[T]) RetainProtos(m map[Proto][]T) bool {
	gate := c.Gate()
	var keep []T
	for p, items := range m {
		if NewGate(c.Shape(), p).InverseMatch(gate) {
			keep = append(keep, items...)
		}
	}
	return c.RetainAll(keep...)
}

func (c *Collection[T]) Add(item T) bool {
	return c.AddProto(c.fingerprint(item), item)
}

func (c *Collection[T]) AddAll(items ...T) bool {
	var changed bool
	for _, item := range items {
		changed = c.Add(item) || changed
	}
	return changed
}

func (c *Collection[T]) Remove(item T) bool {
	return c.RemoveProto(c.fingerprint(item), item)
}

func (c *Collection[T]) RemoveAll(items ...T) bool {
	var changed bool
	for _, item := range items {
		changed = c.Remove(item) || changed
	}
	return changed
}

func (c *Collection[T]) Contains(item T) bool {
	return c.ContainsProto(c.fingerprint(item), item)
}

// ContainsAll tests the union of all fingerprints against the gate once and
// only consults the store if it matches.
func (c *Collection[T]) ContainsAll(items ...T) bool {
	b := NewProtoBuilder()
	for _, item := range items {
		b.With(c.fingerprint(item))
	}
	if !c.Matches(b.Build().Gate(c.Shape())) {
		return false
	}
	for _, item := range items {
		if !c.store.Contains(item) {
			return false
		}
	}
	return true
}

// RetainAll removes every stored item not in items and records the removals
// as deletes.
func (c *Collection[T]) RetainAll(items ...T) bool {
	keep := make(map[T]struct{}, len(items))
	for _, item := range items {
		keep[item] = struct{}{}
	}
	removed := c.store.DeleteFunc(func(item T) bool {
		_, ok := keep[item]
		return !ok
	})
	if removed == 0 {
		return false
	}
	c.gc.Stats().Delete(uint64(removed))
	return true
}

func (c *Collection[T]) Len() int         { return c.store.Len() }
func (c *Collection[T]) IsEmpty() bool    { return c.store.Len() == 0 }
func (c *Collection[T]) All() iter.Seq[T] { return c.store.All() }
func (c *Collection[T]) ToSlice() []T     { return slices.Collect(c.store.All()) }

// Clear empties the gate, zeroes the statistics and clears the store.
func (c *Collection[T]) Clear() {
	c.gc.Clear()
	c.store.Clear()
}
