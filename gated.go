package gatedbloom

import "iter"

// Gated is implemented by the gated collection variants of this package,
// *Collection and *Nested. Methods taking a Proto skip fingerprinting and
// expect the fingerprint of the accompanying item.
type Gated[T comparable] interface {
	// Gate returns the gate summarizing everything merged so far.
	Gate() *Gate
	Shape() Shape
	Stats() *Statistics

	// IsFull reports whether the collection holds at least Shape().Capacity()
	// items. Adding past full is allowed but degrades gate accuracy.
	IsFull() bool
	Distance(g *Gate) int
	Matches(g *Gate) bool
	InverseMatch(g *Gate) bool

	// Candidates returns the items that may satisfy g. Items not yielded
	// certainly do not.
	Candidates(g *Gate) iter.Seq[T]
	CandidatesFor(protos ...Proto) iter.Seq[T]
	Data() iter.Seq[T]
	Count() uint64

	AddProto(p Proto, item T) bool
	RemoveProto(p Proto, item T) bool
	ContainsProto(p Proto, item T) bool
	RetainProtos(m map[Proto][]T) bool

	Add(item T) bool
	AddAll(items ...T) bool
	Remove(item T) bool
	RemoveAll(items ...T) bool
	Contains(item T) bool
	ContainsAll(items ...T) bool
	RetainAll(items ...T) bool
	Len() int
	IsEmpty() bool
	All() iter.Seq[T]
	ToSlice() []T
	Clear()

	gated()
}

var (
	_ Gated[string] = (*Collection[string])(nil)
	_ Gated[string] = (*Nested[string])(nil)
)

func emptySeq[T any](func(T) bool) {}

// protoMap groups items by fingerprint.
func protoMap[T comparable](fingerprint func(T) Proto, items []T) map[Proto][]T {
	m := make(map[Proto][]T, len(items))
	for _, item := range items {
		p := fingerprint(item)
		m[p] = append(m[p], item)
	}
	return m
}
