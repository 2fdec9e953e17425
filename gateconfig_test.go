package gatedbloom

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGateConfigMerge(t *testing.T) {
	s := NewShape(1000, 0.01)
	gc := NewGateConfig(s)

	require.True(t, gc.Gate().IsEmpty())
	require.True(t, gc.Shape().Equal(s))

	p := StringProto("a")
	gc.MergeProtos(p)
	require.True(t, gc.Gate().Match(NewGate(s, p)))
	require.Equal(t, uint64(1), gc.Stats().InsertCount())

	before := gc.Gate()
	gc.MergeProtos(p)
	require.True(t, gc.Gate().Equal(before))
	require.Equal(t, uint64(2), gc.Stats().InsertCount(), "an insert is counted even without new bits")
}

func TestGateConfigMergeKeepsReturnedGates(t *testing.T) {
	s := NewShape(1000, 0.01)
	gc := NewGateConfig(s)
	gc.MergeProtos(StringProto("a"))

	snapshot := gc.Gate()
	card := snapshot.Cardinality()
	gc.MergeProtos(StringProto("b"))

	require.Equal(t, card, snapshot.Cardinality())
}

func TestGateConfigClearIsIdempotent(t *testing.T) {
	gc := NewGateConfig(NewShape(1000, 0.01))
	for i := range 10 {
		gc.MergeProtos(StringProto(fmt.Sprintf("item-%d", i)))
	}
	gc.Stats().Delete(3)

	for range 2 {
		gc.Clear()
		require.True(t, gc.Gate().IsEmpty())
		require.Zero(t, gc.Stats().InsertCount())
		require.Zero(t, gc.Stats().DeleteCount())
	}
}

func TestGateConfigConcurrentMerge(t *testing.T) {
	s := NewShape(10_000, 0.01)
	gc := NewGateConfig(s)

	const goroutines = 8
	const perGoroutine = 500

	var wg sync.WaitGroup
	for g := range goroutines {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := range perGoroutine {
				gc.MergeProtos(StringProto(fmt.Sprintf("worker-%d-item-%d", id, i)))
			}
		}(g)
	}
	wg.Wait()

	require.Equal(t, uint64(goroutines*perGoroutine), gc.Stats().InsertCount())
	gate := gc.Gate()
	for g := range goroutines {
		for i := range perGoroutine {
			p := StringProto(fmt.Sprintf("worker-%d-item-%d", g, i))
			require.True(t, gate.Match(NewGate(s, p)), "worker-%d-item-%d missing", g, i)
		}
	}
}
