package gatedbloom

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/xxh3"
)

// Proto is the shape-independent fingerprint of an item: a single 64-bit
// hash from which a gate of any Shape can be derived.
type Proto uint64

// Hasher turns item keys into Protos.
type Hasher interface {
	Proto(data []byte) Proto
	ProtoString(s string) Proto
	Name() string
}

var (
	// XXH3 hashes keys with xxh3. It is the default hasher.
	XXH3 Hasher = xxh3Hasher{}
	// XXHash hashes keys with xxhash64.
	XXHash Hasher = xxhashHasher{}
)

type xxh3Hasher struct{}

func (xxh3Hasher) Proto(data []byte) Proto    { return Proto(xxh3.Hash(data)) }
func (xxh3Hasher) ProtoString(s string) Proto { return Proto(xxh3.HashString(s)) }
func (xxh3Hasher) Name() string               { return "xxh3" }

type xxhashHasher struct{}

func (xxhashHasher) Proto(data []byte) Proto    { return Proto(xxhash.Sum64(data)) }
func (xxhashHasher) ProtoString(s string) Proto { return Proto(xxhash.Sum64String(s)) }
func (xxhashHasher) Name() string               { return "xxhash" }

// HasherByName returns the hasher registered under name. The empty name
// selects XXH3.
func HasherByName(name string) (Hasher, error) {
	switch name {
	case "", XXH3.Name():
		return XXH3, nil
	case XXHash.Name():
		return XXHash, nil
	}
	return nil, fmt.Errorf("%w: unknown hash %q", ErrInvalidConfig, name)
}

// BytesProto fingerprints data with XXH3.
func BytesProto(data []byte) Proto { return XXH3.Proto(data) }

// StringProto fingerprints s with XXH3 without allocating.
func StringProto(s string) Proto { return XXH3.ProtoString(s) }

// hashSplit splits a 64-bit hash into block index (upper 32 bits) and
// intra-block hash (lower 32 bits).
func hashSplit(h uint64, numBlocks uint64) (blockIdx uint64, intraHash uint32) {
	blockIdx = (h >> 32) % numBlocks
	intraHash = uint32(h)
	return
}

// ProtoSet is the union of several fingerprints. A gate built from a
// ProtoSet matches only where every member would match.
type ProtoSet []Proto

// ProtoBuilder accumulates fingerprints into a ProtoSet.
type ProtoBuilder struct {
	protos ProtoSet
}

// NewProtoBuilder returns an empty builder.
func NewProtoBuilder() *ProtoBuilder {
	return &ProtoBuilder{}
}

// With adds the fingerprints to the union and returns the builder.
func (b *ProtoBuilder) With(protos ...Proto) *ProtoBuilder {
	b.protos = append(b.protos, protos...)
	return b
}

// Build returns the accumulated union.
func (b *ProtoBuilder) Build() ProtoSet {
	return slices.Clone(b.protos)
}

// Gate builds the gate of the union for shape s.
func (ps ProtoSet) Gate(s Shape) *Gate {
	return NewGate(s, ps...)
}
