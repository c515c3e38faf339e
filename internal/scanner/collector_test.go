package scanner

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollector_ManyProducers(t *testing.T) {
	c := NewCollector()

	const producers, perProducer = 8, 500
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				c.Emit(DiscoveredFile{Path: fmt.Sprintf("%d/%d.rar", p, i), Size: int64(i)})
			}
		}(p)
	}
	wg.Wait()
	c.Close()

	files := c.Collect()
	assert.Len(t, files, producers*perProducer)
	assert.Equal(t, int64(producers*perProducer), c.Received())

	seen := make(map[string]bool, len(files))
	for _, f := range files {
		assert.False(t, seen[f.Path], "duplicate %s", f.Path)
		seen[f.Path] = true
	}
}

func TestCollector_ProducerPerOrderPreserved(t *testing.T) {
	c := NewCollector()
	for i := 0; i < 3000; i++ {
		c.Emit(DiscoveredFile{Path: fmt.Sprintf("%05d", i)})
	}
	c.Close()

	files := c.Collect()
	for i, f := range files {
		assert.Equal(t, fmt.Sprintf("%05d", i), f.Path)
	}
}

func TestCollector_EmptyAndDoubleClose(t *testing.T) {
	c := NewCollector()
	c.Close()
	c.Close()

	assert.Empty(t, c.Collect())
	assert.Equal(t, int64(0), c.Received())
}
