// Package gatedbloom provides collections guarded by a Bloom filter "gate".
//
// A gated collection wraps an ordinary mutable collection (a [Store]) and
// keeps a Bloom filter of everything ever added to it. Lookups, removals and
// candidate searches first test the item's gate against the stored gate and
// only touch the store on a match. A miss is definite, a match is only a
// maybe, so the store always gives the final answer.
//
// # Gates
//
// Gates use the cache-line blocked one-hashing layout: the bit pattern is
// divided into 512-bit blocks, an item's 64-bit fingerprint ([Proto]) selects
// one block with its upper 32 bits, and its lower 32 bits taken modulo k
// distinct primes select k bits inside that block. A [Shape] fixes the block
// count and k; fingerprints are shape independent, so the same Proto can be
// tested against gates of any shape.
//
// Gates only grow. Removing an item cannot clear its bits, so the gate keeps
// matching removed items until [Collection.Clear]. [Statistics] records the
// logical inserts and deletes instead.
//
// # Collections
//
// [Collection] couples one store with one gate.
//
// [Nested] spreads items over buckets, each a Collection with its own gate.
// An item is placed in the non-full bucket whose gate has the smallest
// Hamming distance to the item's gate, so similar items share a bucket and
// each bucket's false positive rate grows slowly. When an add fills a bucket
// a new one is created. The aggregate gate of a Nested collection is the
// union of all bucket gates; bucket deletes roll up into the aggregate
// statistics while inserts are counted once at the aggregate.
//
//	shape := gatedbloom.NewShape(1_000, 0.01)
//	factory := gatedbloom.SetBucketFactory(shape, gatedbloom.StringProto)
//	n := gatedbloom.NewNested(factory, gatedbloom.NewShape(100_000, 0.01), 1)
//	n.Add("apple")
//	n.Contains("apple") // true
//
// # Configuration
//
// [Config] describes a Nested collection in YAML and is validated on load.
// [NewNestedFromConfig] builds the collection it describes.
//
// # Thread Safety
//
// [GateConfig] and [Statistics] are safe for concurrent use. Collections are
// NOT: callers must serialize mutation, in particular [Nested.Add], whose
// bucket selection is not atomic.
//
// Consumers registered with [Statistics.AddConsumer] run while the statistics
// lock is held and must not call back into the same instance.
package gatedbloom
