package gatedbloom

import (
	"iter"
	"log/slog"
	"math"
	"slices"
)

// BucketFactory creates the buckets of a Nested collection. Every bucket it
// creates shares one shape and one fingerprint function.
type BucketFactory[T comparable] struct {
	shape           Shape
	fingerprint     func(T) Proto
	newStore        func() Store[T]
	allowDuplicates bool
}

// NewBucketFactory returns a factory for buckets of shape s backed by stores
// from newStore. allowDuplicates decides whether the same item may be added
// to the nested collection more than once.
func NewBucketFactory[T comparable](s Shape, fingerprint func(T) Proto, newStore func() Store[T], allowDuplicates bool) *BucketFactory[T] {
	return &BucketFactory[T]{
		shape:           s,
		fingerprint:     fingerprint,
		newStore:        newStore,
		allowDuplicates: allowDuplicates,
	}
}

// ListBucketFactory returns a factory of ListStore buckets that permits
// duplicates.
func ListBucketFactory[T comparable](s Shape, fingerprint func(T) Proto) *BucketFactory[T] {
	return NewBucketFactory(s, fingerprint, func() Store[T] { return NewListStore[T]() }, true)
}

// SetBucketFactory returns a factory of SetStore buckets that rejects
// duplicates across the whole nested collection.
func SetBucketFactory[T comparable](s Shape, fingerprint func(T) Proto) *BucketFactory[T] {
	return NewBucketFactory(s, fingerprint, func() Store[T] { return NewSetStore[T]() }, false)
}

// NewBucket returns an empty bucket.
func (f *BucketFactory[T]) NewBucket() *Collection[T] {
	return NewCollection(f.newStore(), NewGateConfig(f.shape), f.fingerprint)
}

func (f *BucketFactory[T]) Shape() Shape          { return f.shape }
func (f *BucketFactory[T]) AllowDuplicates() bool { return f.allowDuplicates }

type options struct {
	logger *slog.Logger
}

// Option configures a Nested collection.
type Option func(*options)

// WithLogger sets the logger used to report bucket creation.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Nested spreads its items across buckets created by a BucketFactory. Each
// item goes to the non-full bucket whose gate is nearest to the item's gate,
// which keeps similar items together and slows the false positive growth of
// every single bucket. A new bucket is created whenever an add fills the
// bucket it chose. Buckets are never removed or reordered.
//
// Deletes recorded by a bucket are added to the statistics of the Nested
// collection. Inserts are recorded by the Nested collection itself.
//
// Nested is NOT safe for concurrent mutation: concurrent Add calls may pick
// the same bucket or create redundant buckets.
type Nested[T comparable] struct {
	factory *BucketFactory[T]
	gc      *GateConfig
	buckets []*Collection[T]
	logger  *slog.Logger
}

// NewNested returns a nested collection with minFree empty buckets and an
// aggregate gate of shape s.
func NewNested[T comparable](factory *BucketFactory[T], s Shape, minFree int, opts ...Option) *Nested[T] {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	n := &Nested[T]{
		factory: factory,
		gc:      NewGateConfig(s),
		logger:  o.logger,
	}
	for range max(minFree, 0) {
		n.newBucket("min_free")
	}
	return n
}

func (n *Nested[T]) gated() {}

func (n *Nested[T]) newBucket(reason string) *Collection[T] {
	b := n.factory.NewBucket()
	b.Stats().AddConsumer(n.gc.Stats().ActionMapper())
	n.buckets = append(n.buckets, b)
	n.logger.Debug("created bucket",
		"bucket", len(n.buckets)-1,
		"reason", reason,
		"shape", b.Shape().String(),
	)
	return b
}

// Buckets returns the buckets in creation order.
func (n *Nested[T]) Buckets() []*Collection[T] { return slices.Clone(n.buckets) }

func (n *Nested[T]) Factory() *BucketFactory[T] { return n.factory }
func (n *Nested[T]) GateConfig() *GateConfig    { return n.gc }
func (n *Nested[T]) Gate() *Gate                { return n.gc.Gate() }
func (n *Nested[T]) Shape() Shape               { return n.gc.Shape() }
func (n *Nested[T]) Stats() *Statistics         { return n.gc.Stats() }

func (n *Nested[T]) IsFull() bool {
	return n.Shape().Capacity() <= uint64(n.Len())
}

func (n *Nested[T]) Distance(g *Gate) int      { return n.Gate().Distance(g) }
func (n *Nested[T]) Matches(g *Gate) bool      { return n.Gate().Match(g) }
func (n *Nested[T]) InverseMatch(g *Gate) bool { return n.Gate().InverseMatch(g) }

// AddProto places item in the nearest non-full bucket.
func (n *Nested[T]) AddProto(p Proto, item T) bool {
	// Buckets normally share the factory shape; build one candidate gate per
	// distinct shape.
	var gates []*Gate
	gateFor := func(s Shape) *Gate {
		for _, g := range gates {
			if g.Shape().Equal(s) {
				return g
			}
		}
		g := NewGate(s, p)
		gates = append(gates, g)
		return g
	}

	if !n.factory.allowDuplicates {
		for _, b := range n.buckets {
			if b.ContainsProto(p, item) {
				return false
			}
		}
	}

	var chosen *Collection[T]
	best := math.MaxInt
	for _, b := range n.buckets {
		if b.IsFull() {
			continue
		}
		if d := b.Distance(gateFor(b.Shape())); chosen == nil || d < best {
			chosen, best = b, d
		}
	}
	if chosen == nil {
		n.logger.Warn("no free bucket available", "buckets", len(n.buckets))
		chosen = n.newBucket("no_free_bucket")
	}

	if !chosen.AddProto(p, item) {
		return false
	}
	n.gc.MergeProtos(p)

	if chosen.IsFull() {
		n.newBucket("bucket_full")
	}
	return true
}

// RemoveProto removes item from every bucket holding it.
func (n *Nested[T]) RemoveProto(p Proto, item T) bool {
	if !n.Matches(NewGate(n.Shape(), p)) {
		return false
	}
	var removed bool
	for _, b := range n.buckets {
		removed = b.RemoveProto(p, item) || removed
	}
	return removed
}

func (n *Nested[T]) ContainsProto(p Proto, item T) bool {
	if !n.Matches(NewGate(n.Shape(), p)) {
		return false
	}
	for _, b := range n.buckets {
		if b.ContainsProto(p, item) {
			return true
		}
	}
	return false
}

// RetainProtos asks every bucket to retain the items of m.
func (n *Nested[T]) RetainProtos(m map[Proto][]T) bool {
	var changed bool
	for _, b := range n.buckets {
		changed = b.RetainProtos(m) || changed
	}
	return changed
}

// Candidates returns the items that may satisfy g. When g has the bucket
// shape the search narrows to the matching buckets; otherwise every item of
// a matching aggregate gate is a candidate. The aggregate gate only rejects
// g early when g has the aggregate shape.
func (n *Nested[T]) Candidates(g *Gate) iter.Seq[T] {
	narrow := n.uniformShape(g.Shape())
	if (!narrow || g.Shape().Equal(n.Shape())) && !n.Matches(g) {
		return emptySeq[T]
	}
	if !narrow {
		return n.Data()
	}
	buckets := slices.Clone(n.buckets)
	return func(yield func(T) bool) {
		for _, b := range buckets {
			for item := range b.Candidates(g) {
				if !yield(item) {
					return
				}
			}
		}
	}
}

// CandidatesFor builds the gate of protos for each level separately, so the
// search always narrows to matching buckets.
func (n *Nested[T]) CandidatesFor(protos ...Proto) iter.Seq[T] {
	if !n.Matches(NewGate(n.Shape(), protos...)) {
		return emptySeq[T]
	}
	buckets := slices.Clone(n.buckets)
	return func(yield func(T) bool) {
		for _, b := range buckets {
			for item := range b.CandidatesFor(protos...) {
				if !yield(item) {
					return
				}
			}
		}
	}
}

// uniformShape reports whether every bucket and s have the factory shape.
func (n *Nested[T]) uniformShape(s Shape) bool {
	if !s.Equal(n.factory.shape) {
		return false
	}
	for _, b := range n.buckets {
		if !b.Shape().Equal(n.factory.shape) {
			return false
		}
	}
	return true
}

// Data returns the items of every bucket in bucket order.
func (n *Nested[T]) Data() iter.Seq[T] {
	buckets := slices.Clone(n.buckets)
	return func(yield func(T) bool) {
		for _, b := range buckets {
			for item := range b.Data() {
				if !yield(item) {
					return
				}
			}
		}
	}
}

// Count returns the number of items across all buckets.
func (n *Nested[T]) Count() uint64 {
	var total uint64
	for _, b := range n.buckets {
		total = saturatingAdd(total, b.Count())
	}
	return total
}

// Len returns Count clamped to math.MaxInt32.
func (n *Nested[T]) Len() int {
	c := n.Count()
	if c > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(c)
}

func (n *Nested[T]) IsEmpty() bool { return n.Count() == 0 }

func (n *Nested[T]) Add(item T) bool {
	return n.AddProto(n.factory.fingerprint(item), item)
}

func (n *Nested[T]) AddAll(items ...T) bool {
	var changed bool
	for _, item := range items {
		changed = n.Add(item) || changed
	}
	return changed
}

func (n *Nested[T]) Remove(item T) bool {
	return n.RemoveProto(n.factory.fingerprint(item), item)
}

func (n *Nested[T]) RemoveAll(items ...T) bool {
	var changed bool
	for _, item := range items {
		changed = n.Remove(item) || changed
	}
	return changed
}

func (n *Nested[T]) Contains(item T) bool {
	return n.ContainsProto(n.factory.fingerprint(item), item)
}

// ContainsAll reports whether every item is held by some bucket.
func (n *Nested[T]) ContainsAll(items ...T) bool {
	pb := NewProtoBuilder()
	for _, item := range items {
		pb.With(n.factory.fingerprint(item))
	}
	if !n.Matches(pb.Build().Gate(n.Shape())) {
		return false
	}
	for _, item := range items {
		if !slices.ContainsFunc(n.buckets, func(b *Collection[T]) bool { return b.store.Contains(item) }) {
			return false
		}
	}
	return true
}

// RetainAll keeps only the given items in every bucket.
func (n *Nested[T]) RetainAll(items ...T) bool {
	return n.RetainProtos(protoMap(n.factory.fingerprint, items))
}

func (n *Nested[T]) All() iter.Seq[T] { return n.Data() }
func (n *Nested[T]) ToSlice() []T     { return slices.Collect(n.Data()) }

// Clear empties the aggregate gate and every bucket. The bucket count is
// unchanged.
func (n *Nested[T]) Clear() {
	n.gc.Clear()
	for _, b := range n.buckets {
		b.Clear()
	}
}
