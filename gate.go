package gatedbloom

import (
	"math"

	"github.com/bits-and-blooms/bitset"
)

// Gate is an accumulated Bloom filter bit pattern. A Gate is never modified
// after it is returned to a caller: Merge builds a new gate.
type Gate struct {
	shape Shape
	bits  *bitset.BitSet
}

// EmptyGate returns a gate of shape s with no bits set.
func EmptyGate(s Shape) *Gate {
	return &Gate{shape: s, bits: bitset.New(uint(s.Bits()))}
}

// NewGate returns the gate of shape s that sets the probes of every proto.
func NewGate(s Shape, protos ...Proto) *Gate {
	g := EmptyGate(s)
	for _, p := range protos {
		s.positions(p, func(pos uint) { g.bits.Set(pos) })
	}
	return g
}

// Shape returns the shape the gate was built for.
func (g *Gate) Shape() Shape { return g.shape }

// Merge returns the OR of g and other. Gates of different shapes cannot be
// merged; g is returned unchanged.
func (g *Gate) Merge(other *Gate) *Gate {
	if !g.shape.Equal(other.shape) {
		return g
	}
	return &Gate{shape: g.shape, bits: g.bits.Union(other.bits)}
}

// Match reports whether g has every bit of other set, i.e. whatever other
// represents may be present in g.
func (g *Gate) Match(other *Gate) bool {
	if !g.shape.Equal(other.shape) {
		return false
	}
	return g.bits.IsSuperSet(other.bits)
}

// InverseMatch reports whether other has every bit of g set.
func (g *Gate) InverseMatch(other *Gate) bool {
	return other.Match(g)
}

// Distance returns the Hamming distance between the two bit patterns.
// Gates of different shapes are maximally distant.
func (g *Gate) Distance(other *Gate) int {
	if !g.shape.Equal(other.shape) {
		return math.MaxInt
	}
	return int(g.bits.SymmetricDifferenceCardinality(other.bits))
}

// IsEmpty reports whether no bit is set.
func (g *Gate) IsEmpty() bool { return g.bits.None() }

// Cardinality returns the number of set bits.
func (g *Gate) Cardinality() uint64 { return uint64(g.bits.Count()) }

// FillRatio returns the proportion of bits that are set.
func (g *Gate) FillRatio() float64 {
	return float64(g.bits.Count()) / float64(g.shape.Bits())
}

// Equal reports whether both gates have the same shape and bits.
func (g *Gate) Equal(other *Gate) bool {
	return g.shape.Equal(other.shape) && g.bits.Equal(other.bits)
}
