package gatedbloom

import "sync"

// GateConfig owns the gate and statistics of one gated collection. Merge and
// Clear are serialized by a single lock so neither is observed half applied.
type GateConfig struct {
	mu    sync.Mutex
	shape Shape
	gate  *Gate
	stats *Statistics
}

// NewGateConfig returns an empty gate of shape s with zeroed statistics.
func NewGateConfig(s Shape) *GateConfig {
	return &GateConfig{
		shape: s,
		gate:  EmptyGate(s),
		stats: NewStatistics(),
	}
}

// Merge ORs g into the stored gate and records one insert. The insert is
// recorded even when g adds no new bits.
func (c *GateConfig) Merge(g *Gate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !g.InverseMatch(c.gate) {
		c.gate = c.gate.Merge(g)
	}
	c.stats.Insert()
}

// MergeProtos merges the gate of protos.
func (c *GateConfig) MergeProtos(protos ...Proto) {
	c.Merge(NewGate(c.shape, protos...))
}

// Clear empties the gate and zeroes the statistics.
func (c *GateConfig) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gate = EmptyGate(c.shape)
	c.stats.Clear()
}

// Gate returns the current gate.
func (c *GateConfig) Gate() *Gate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gate
}

// Shape returns the immutable shape of the gate.
func (c *GateConfig) Shape() Shape { return c.shape }

// Stats returns the statistics recorded against the gate.
func (c *GateConfig) Stats() *Statistics { return c.stats }
