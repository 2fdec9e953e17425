package gatedbloom

import (
	"math"
	"sync"
)

// Change identifies the kind of update a Statistics instance reports.
type Change uint8

const (
	Insert Change = iota + 1
	Delete
	Clear
)

func (c Change) String() string {
	switch c {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Clear:
		return "clear"
	}
	return "unknown"
}

// Action is delivered to every consumer of a Statistics instance.
type Action struct {
	Change Change
	Count  uint64
}

// Consumer receives statistics updates. Consumers run synchronously while
// the originating Statistics lock is held and must not call Insert, Delete
// or Clear on that same instance.
type Consumer func(Action)

// Statistics counts inserts and deletes performed against a gate. Both
// counters saturate at math.MaxUint64.
type Statistics struct {
	mu        sync.Mutex
	inserts   uint64
	deletes   uint64
	consumers []Consumer
	mapper    Consumer
}

// NewStatistics returns zeroed statistics with no consumers.
func NewStatistics() *Statistics {
	return &Statistics{}
}

// Insert records a single insert.
func (s *Statistics) Insert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts = saturatingAdd(s.inserts, 1)
	s.notify(Action{Change: Insert, Count: 1})
}

// Delete records count deletes.
func (s *Statistics) Delete(count uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = saturatingAdd(s.deletes, count)
	s.notify(Action{Change: Delete, Count: count})
}

// Clear zeroes both counters. Registered consumers are kept.
func (s *Statistics) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts = 0
	s.deletes = 0
	s.notify(Action{Change: Clear, Count: 1})
}

// AddConsumer appends c to the consumers notified of every change.
func (s *Statistics) AddConsumer(c Consumer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consumers = append(s.consumers, c)
}

// ActionMapper returns a consumer that forwards Delete actions into s.
// Insert and Clear actions are dropped: inserts are counted once where the
// item is merged, and a child clear never clears its parent. The same
// consumer is returned on every call.
func (s *Statistics) ActionMapper() Consumer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mapper == nil {
		s.mapper = func(a Action) {
			if a.Change == Delete {
				s.Delete(a.Count)
			}
		}
	}
	return s.mapper
}

// InsertCount returns the number of recorded inserts.
func (s *Statistics) InsertCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts
}

// DeleteCount returns the number of recorded deletes.
func (s *Statistics) DeleteCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletes
}

// FilterCount returns inserts minus deletes, floored at zero. With
// duplicate-permitting stores this need not equal the live element count.
func (s *Statistics) FilterCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deletes > s.inserts {
		return 0
	}
	return s.inserts - s.deletes
}

// TransactionCount returns inserts plus deletes, saturating.
func (s *Statistics) TransactionCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saturatingAdd(s.inserts, s.deletes)
}

func (s *Statistics) notify(a Action) {
	for _, c := range s.consumers {
		c(a)
	}
}

func saturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}
