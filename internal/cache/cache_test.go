package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLRUGetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	// "b" is now least recently used.
	c.Set("c", "3")
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Size())
}

func TestLRUExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Minute).WithClock(func() time.Time { return now })
	c.Set("k", 1)
	c.Set("j", 2)

	now = now.Add(2 * time.Minute)
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 0, c.Size())
}

func TestDeletePrefix(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("bills?skip=0", 1)
	c.Set("bills?skip=10", 2)
	c.Set("budgets?skip=0", 3)

	assert.Equal(t, 2, c.DeletePrefix("bills?"))
	_, ok := c.Get("budgets?skip=0")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Size())
}

func TestSetIfGenerationSkipsAfterInvalidation(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	gen := c.Generation("bills?")

	c.DeletePrefix("bills?")
	assert.False(t, c.SetIfGeneration("bills?skip=0", "bills?", gen, 1))
	_, ok := c.Get("bills?skip=0")
	assert.False(t, ok)

	// other prefixes keep their own generation
	assert.True(t, c.SetIfGeneration("budgets?skip=0", "budgets?", c.Generation("budgets?"), 2))

	gen = c.Generation("bills?")
	assert.True(t, c.SetIfGeneration("bills?skip=0", "bills?", gen, 3))
	v, ok := c.Get("bills?skip=0")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestConcurrentAccess(t *testing.T) {
	c := NewLRUCache[int](50, time.Minute)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				key := fmt.Sprintf("k%d", (i*j)%70)
				c.Set(key, j)
				c.Get(key)
				if j%25 == 0 {
					c.DeletePrefix("k1")
				}
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Size(), 50)
}

func TestManagerStopsCleanly(t *testing.T) {
	now := time.Now()
	c := NewLRUCache[int](10, time.Millisecond).WithClock(func() time.Time { return now })
	c.Set("k", 1)
	now = now.Add(time.Second)

	m := NewManager(nil)
	m.Register(c)
	assert.Equal(t, 1, m.CleanAll())

	m.StartCleanup(5 * time.Millisecond)
	m.StartCleanup(5 * time.Millisecond)
	m.Stop()
}

func TestManagerStopWithoutStart(t *testing.T) {
	m := NewManager(nil)
	m.Stop()
}
