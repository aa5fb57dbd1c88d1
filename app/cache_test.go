package app

import (
	"sync"
	"testing"

	"jobmetrics/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestReportCacheEvictsOldest(t *testing.T) {
	c := NewReportCache(2)
	for _, name := range []string{"a", "b", "c"} {
		c.Put(&Dataset{Hash: core.NewHash([]byte(name)), Filename: name})
	}

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(core.NewHash([]byte("a")))
	assert.False(t, ok)
	ds, ok := c.Get(core.NewHash([]byte("c")))
	assert.True(t, ok)
	assert.Equal(t, "c", ds.Filename)
}

func TestReportCacheNilIsDisabled(t *testing.T) {
	var c *ReportCache
	c.Put(&Dataset{Hash: "h"})
	_, ok := c.Get("h")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestReportCacheConcurrentAccess(t *testing.T) {
	c := NewReportCache(8)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h := core.NewHash([]byte{byte(i % 4)})
			c.Put(&Dataset{Hash: h})
			c.Get(h)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 4, c.Len())
}
