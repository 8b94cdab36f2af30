package sync

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShardedMap_UpdateCreatesAndMutates(t *testing.T) {
	m := NewShardedMap[int]()

	got := m.Update("203.0.113.7", func(current int, ok bool) int {
		assert.False(t, ok)
		return current + 1
	})
	assert.Equal(t, 1, got)

	got = m.Update("203.0.113.7", func(current int, ok bool) int {
		assert.True(t, ok)
		return current + 1
	})
	assert.Equal(t, 2, got)

	v, ok := m.Get("203.0.113.7")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestShardedMap_SameKeyUpdatesAreAtomic(t *testing.T) {
	m := NewShardedMap[int]()
	var wg sync.WaitGroup

	for range 200 {
		wg.Go(func() {
			m.Update("same-key", func(current int, _ bool) int {
				return current + 1
			})
		})
	}
	wg.Wait()

	v, _ := m.Get("same-key")
	assert.Equal(t, 200, v)
}

func TestShardedMap_DeleteFuncAndLen(t *testing.T) {
	m := NewShardedMap[int]()
	for i := range 50 {
		m.Update("key-"+strconv.Itoa(i), func(int, bool) int { return i })
	}
	require.Equal(t, 50, m.Len())

	removed := m.DeleteFunc(func(_ string, v int) bool { return v%2 == 0 })

	assert.Equal(t, 25, removed)
	assert.Equal(t, 25, m.Len())
	_, ok := m.Get("key-4")
	assert.False(t, ok)

	m.Delete("key-5")
	assert.Equal(t, 24, m.Len())
}

func TestShardDistribution(t *testing.T) {
	shards := make(map[int]bool)
	keys := []string{"10.0.0.1", "10.0.0.2", "192.168.1.40", "2001:db8::1", "unknown", "203.0.113.9"}

	for _, key := range keys {
		shards[shardFor(key)] = true
	}

	assert.GreaterOrEqual(t, len(shards), 3, "expected keys to distribute across multiple shards")
	assert.Equal(t, 0, shardFor(""))
	assert.Equal(t, hashString("unknown"), hashString("unknown"))
}
