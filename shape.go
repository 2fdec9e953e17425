package gatedbloom

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

const (
	// BlockBits is the number of bits per gate block (cache line size).
	BlockBits = 512
	// ln2 is the natural logarithm of 2.
	ln2 = 0.6931471805599453
	// ln2Squared is ln(2)^2.
	ln2Squared = 0.4804530139182014

	// MinK and MaxK bound the number of probes a Shape supports.
	MinK = 3
	MaxK = 14
)

// ErrInvalidShape is returned when explicit shape parameters are unusable.
var ErrInvalidShape = errors.New("gatedbloom: invalid shape")

// primePartitions holds, for each supported k, k strictly distinct values
// summing to exactly BlockBits. A single 32-bit hash taken modulo each value
// yields k independent positions inside one block.
//
// Odd k needs one even filler because an odd count of odd primes cannot sum
// to 512.
var primePartitions = map[uint32][]uint32{
	3:  {167, 173, 172},
	4:  {109, 127, 137, 139},
	5:  {97, 101, 103, 109, 102},
	6:  {61, 79, 83, 89, 97, 103},
	7:  {61, 67, 71, 79, 83, 89, 62},
	8:  {37, 47, 53, 61, 67, 71, 79, 97},
	9:  {41, 43, 47, 53, 59, 67, 71, 73, 58},
	10: {31, 37, 41, 43, 47, 53, 59, 61, 67, 73},
	11: {29, 31, 37, 41, 43, 44, 47, 53, 59, 61, 67},
	12: {17, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 71},
	13: {17, 19, 23, 29, 31, 37, 41, 43, 47, 52, 53, 59, 61},
	14: {11, 13, 17, 19, 23, 29, 31, 37, 41, 47, 53, 59, 61, 71},
}

// Shape holds the immutable parameters shared by every gate built for it:
// the configured item capacity, the number of 512-bit blocks and the number
// of probes per item. Two gates can only be compared when their shapes are
// equal.
type Shape struct {
	capacity  uint64
	numBlocks uint64
	k         uint32
	primes    []uint32
	offsets   []uint32
}

// NewShape sizes a shape for the expected number of items and the desired
// false positive rate at that load.
func NewShape(expectedItems uint64, fpRate float64) Shape {
	numBlocks, k, _ := OptimalParams(expectedItems, fpRate)
	s, _ := NewShapeWithParams(max(expectedItems, 1), numBlocks, k)
	return s
}

// NewShapeWithParams builds a shape with explicit parameters.
func NewShapeWithParams(capacity, numBlocks uint64, k uint32) (Shape, error) {
	if numBlocks == 0 {
		return Shape{}, fmt.Errorf("%w: numBlocks cannot be zero", ErrInvalidShape)
	}
	primes := primePartitions[k]
	if primes == nil {
		return Shape{}, fmt.Errorf("%w: k=%d is not supported (valid range: %d-%d)", ErrInvalidShape, k, MinK, MaxK)
	}

	offsets := make([]uint32, len(primes))
	var cumulative uint32
	for i, p := range primes {
		offsets[i] = cumulative
		cumulative += p
	}

	return Shape{
		capacity:  capacity,
		numBlocks: numBlocks,
		k:         k,
		primes:    primes,
		offsets:   offsets,
	}, nil
}

// Capacity returns the number of items the shape was sized for. A gated
// collection reports itself full once it holds this many items.
func (s Shape) Capacity() uint64 { return s.capacity }

// Bits returns the length of the gate bit pattern.
func (s Shape) Bits() uint64 { return s.numBlocks * BlockBits }

// K returns the number of probes set per item.
func (s Shape) K() uint32 { return s.k }

// NumBlocks returns the number of 512-bit blocks.
func (s Shape) NumBlocks() uint64 { return s.numBlocks }

// IsZero reports whether s is the zero Shape.
func (s Shape) IsZero() bool { return s.numBlocks == 0 }

// Equal reports whether gates built for s and o are comparable.
func (s Shape) Equal(o Shape) bool {
	return s.capacity == o.capacity &&
		s.numBlocks == o.numBlocks &&
		s.k == o.k
}

// EstimatedFalsePositiveRate estimates the false positive rate of a gate of
// this shape after n items were merged: (1 - e^(-kn/m))^k.
func (s Shape) EstimatedFalsePositiveRate(n uint64) float64 {
	return EstimateFalsePositiveRate(s.numBlocks, s.k, n)
}

func (s Shape) String() string {
	return fmt.Sprintf("Shape{capacity=%d blocks=%d k=%d}", s.capacity, s.numBlocks, s.k)
}

// positions calls yield with every bit position p sets in a gate of shape s.
func (s Shape) positions(p Proto, yield func(uint)) {
	blockIdx, intraHash := hashSplit(uint64(p), s.numBlocks)
	base := blockIdx * BlockBits
	for i := range s.k {
		yield(uint(base + uint64(s.offsets[i]+intraHash%s.primes[i])))
	}
}

// OptimalParams calculates the number of blocks, number of probes (k) and
// bits per item for the expected number of items and false positive rate.
func OptimalParams(expectedItems uint64, fpRate float64) (numBlocks uint64, k uint32, bitsPerItem float64) {
	if expectedItems == 0 {
		expectedItems = 1
	}
	if fpRate <= 0 {
		fpRate = 0.0001
	}
	if fpRate >= 1 {
		fpRate = 0.99
	}

	bitsPerItem = -math.Log(fpRate) / ln2Squared
	numBlocks = uint64(math.Ceil(float64(expectedItems) * bitsPerItem / BlockBits))

	// k follows the bits actually allocated after rounding up to a block.
	actualBitsPerItem := float64(numBlocks*BlockBits) / float64(expectedItems)
	k = uint32(math.Round(actualBitsPerItem * ln2))
	k = max(k, MinK)
	k = min(k, MaxK)

	return numBlocks, k, bitsPerItem
}

// PrimePartition returns a copy of the partition used for k, or nil if k is
// not supported.
func PrimePartition(k uint32) []uint32 {
	return slices.Clone(primePartitions[k])
}

// EstimateFalsePositiveRate estimates the false positive rate for the given
// parameters: (1 - e^(-kn/m))^k.
func EstimateFalsePositiveRate(numBlocks uint64, k uint32, itemsAdded uint64) float64 {
	m := float64(numBlocks * BlockBits)
	n := float64(itemsAdded)
	if m == 0 || n == 0 {
		return 0
	}
	kf := float64(k)
	return math.Pow(1-math.Exp(-kf*n/m), kf)
}
