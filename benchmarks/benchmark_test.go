package benchmarks

import (
	"fmt"
	"sync"
	"testing"

	bab "github.com/bits-and-blooms/bloom/v3"
	atomicbloom "github.com/ericvolp12/atomic-bloom"
	"github.com/greatroar/blobloom"
	"github.com/jcalabro/gatedbloom"
)

const (
	benchItems  = 100_000
	bucketItems = 4_096
	benchFPRate = 0.01
)

// Pre-generate test data to avoid measuring string generation
var (
	testKeys   []string
	missKeys   []string
	testProtos []gatedbloom.Proto
)

func init() {
	testKeys = make([]string, benchItems)
	missKeys = make([]string, benchItems)
	testProtos = make([]gatedbloom.Proto, benchItems)
	for i := range benchItems {
		testKeys[i] = fmt.Sprintf("key-%d", i)
		missKeys[i] = fmt.Sprintf("miss-%d", i)
		testProtos[i] = gatedbloom.StringProto(testKeys[i])
	}
}

func newCollection() *gatedbloom.Collection[string] {
	gc := gatedbloom.NewGateConfig(gatedbloom.NewShape(benchItems, benchFPRate))
	return gatedbloom.NewCollection[string](gatedbloom.NewSetStore[string](), gc, gatedbloom.StringProto)
}

func newNested() *gatedbloom.Nested[string] {
	factory := gatedbloom.SetBucketFactory(gatedbloom.NewShape(bucketItems, benchFPRate), gatedbloom.StringProto)
	return gatedbloom.NewNested(factory, gatedbloom.NewShape(benchItems, benchFPRate), 1)
}

// ============================================================================
// Add Benchmarks
// ============================================================================

func BenchmarkAdd_Collection(b *testing.B) {
	c := newCollection()
	b.ResetTimer()
	for i := range b.N {
		c.AddProto(testProtos[i%benchItems], testKeys[i%benchItems])
	}
}

func BenchmarkAdd_Nested(b *testing.B) {
	n := newNested()
	b.ResetTimer()
	for i := range b.N {
		n.AddProto(testProtos[i%benchItems], testKeys[i%benchItems])
	}
}

func BenchmarkAdd_Map(b *testing.B) {
	m := make(map[string]struct{}, benchItems)
	b.ResetTimer()
	for i := range b.N {
		m[testKeys[i%benchItems]] = struct{}{}
	}
}

// ============================================================================
// Contains Benchmarks (items never added)
// ============================================================================

func BenchmarkContainsMiss_Collection(b *testing.B) {
	c := newCollection()
	for i := range benchItems {
		c.AddProto(testProtos[i], testKeys[i])
	}
	b.ResetTimer()
	for i := range b.N {
		c.Contains(missKeys[i%benchItems])
	}
}

func BenchmarkContainsMiss_Nested(b *testing.B) {
	n := newNested()
	for i := range benchItems {
		n.AddProto(testProtos[i], testKeys[i])
	}
	b.ResetTimer()
	for i := range b.N {
		n.Contains(missKeys[i%benchItems])
	}
}

func BenchmarkContainsMiss_BitsAndBlooms(b *testing.B) {
	f := bab.NewWithEstimates(benchItems, benchFPRate)
	for i := range benchItems {
		f.AddString(testKeys[i])
	}
	b.ResetTimer()
	for i := range b.N {
		f.TestString(missKeys[i%benchItems])
	}
}

// Blobloom takes pre-hashed keys, so it is fed the same protos as the gates.
func BenchmarkContainsMiss_Blobloom(b *testing.B) {
	f := blobloom.NewOptimized(blobloom.Config{
		Capacity: benchItems,
		FPRate:   benchFPRate,
	})
	for i := range benchItems {
		f.Add(uint64(testProtos[i]))
	}
	misses := make([]uint64, benchItems)
	for i := range benchItems {
		misses[i] = uint64(gatedbloom.StringProto(missKeys[i]))
	}
	b.ResetTimer()
	for i := range b.N {
		f.Has(misses[i%benchItems])
	}
}

// ============================================================================
// Candidate Search Benchmarks
// ============================================================================

func BenchmarkCandidates_Nested(b *testing.B) {
	n := newNested()
	for i := range benchItems {
		n.AddProto(testProtos[i], testKeys[i])
	}
	b.ResetTimer()
	for i := range b.N {
		for range n.CandidatesFor(testProtos[i%benchItems]) {
		}
	}
	b.ReportMetric(float64(len(n.Buckets())), "buckets")
}

// ============================================================================
// Parallel Merge Benchmarks (GateConfig is safe for concurrent use)
// ============================================================================

func BenchmarkMergeParallel_GateConfig(b *testing.B) {
	gc := gatedbloom.NewGateConfig(gatedbloom.NewShape(benchItems, benchFPRate))
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			gc.MergeProtos(testProtos[i%benchItems])
			i++
		}
	})
}

func BenchmarkMergeParallel_AtomicBloom(b *testing.B) {
	f := atomicbloom.NewWithEstimates(benchItems, benchFPRate)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			f.Add([]byte(testKeys[i%benchItems]))
			i++
		}
	})
}

// ============================================================================
// Throughput Test (items per second)
// ============================================================================

func BenchmarkThroughput_GateConfig(b *testing.B) {
	const goroutines = 8
	const itemsPerGoroutine = benchItems / goroutines

	gc := gatedbloom.NewGateConfig(gatedbloom.NewShape(benchItems, benchFPRate))

	b.ResetTimer()
	for range b.N {
		var wg sync.WaitGroup
		wg.Add(goroutines)
		for g := range goroutines {
			go func(gid int) {
				defer wg.Done()
				base := gid * itemsPerGoroutine
				for i := range itemsPerGoroutine {
					gc.MergeProtos(testProtos[base+i])
				}
			}(g)
		}
		wg.Wait()
	}
	b.ReportMetric(float64(goroutines*itemsPerGoroutine), "items/op")
}
