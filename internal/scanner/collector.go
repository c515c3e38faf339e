package scanner

import (
	"sync"
	"sync/atomic"
)

// collectorBuffer sizes the hand-off channel between producers and the drain loop.
const collectorBuffer = 1024

// Collector is the single sink fed by every walker of a scan. Producers call Emit
// from any goroutine; one drain goroutine moves records into an unbounded slice,
// so producers only ever wait for an append, never for the consumer of the result.
// Close must be called once every producer has finished; Collect then returns
// the complete list.
type Collector struct {
	in        chan DiscoveredFile
	done      chan struct{}
	files     []DiscoveredFile
	received  atomic.Int64
	closeOnce sync.Once
}

// NewCollector starts the drain loop.
func NewCollector() *Collector {
	c := &Collector{
		in:   make(chan DiscoveredFile, collectorBuffer),
		done: make(chan struct{}),
	}
	go c.drain()
	return c
}

func (c *Collector) drain() {
	defer close(c.done)
	for f := range c.in {
		c.files = append(c.files, f)
		c.received.Add(1)
	}
}

// Emit hands one record to the collector. It must not be called after Close.
func (c *Collector) Emit(f DiscoveredFile) {
	c.in <- f
}

// Close signals that no producer will emit again. It is safe to call more than once.
func (c *Collector) Close() {
	c.closeOnce.Do(func() { close(c.in) })
}

// Collect blocks until Close has been called and every emitted record has been
// drained, then returns the records in arrival order.
func (c *Collector) Collect() []DiscoveredFile {
	<-c.done
	return c.files
}

// Received returns the number of records drained so far.
func (c *Collector) Received() int64 {
	return c.received.Load()
}
