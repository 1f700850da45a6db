package gridcalc

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineCacheStoreLoad(t *testing.T) {
	c := newEngineCache(2)
	id := uuid.New()
	c.invalidate(id, 1)

	c.Store("Sheet1!A1", id, 1, Num(42))
	v, ok := c.Load("Sheet1!A1")
	require.True(t, ok)
	assert.Equal(t, Num(42), v)
}

func TestEngineCacheEvictsLRUAtCapacity(t *testing.T) {
	c := newEngineCache(2)
	id := uuid.New()
	c.invalidate(id, 1)

	c.Store("A", id, 1, Num(1))
	c.Store("B", id, 1, Num(2))
	c.Store("C", id, 1, Num(3)) // evicts A, the least recently used

	_, ok := c.Load("A")
	assert.False(t, ok)
	_, ok = c.Load("B")
	assert.True(t, ok)
	_, ok = c.Load("C")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestEngineCacheStaleGenerationIsAMiss(t *testing.T) {
	c := newEngineCache(4)
	id := uuid.New()
	c.invalidate(id, 1)
	c.Store("Sheet1!A1", id, 1, Num(1))

	c.invalidate(id, 2) // structural edit bumps the generation

	_, ok := c.Load("Sheet1!A1")
	assert.False(t, ok)
}

func TestEngineCacheStaleInstanceIsAMiss(t *testing.T) {
	c := newEngineCache(4)
	idA := uuid.New()
	idB := uuid.New()
	c.invalidate(idA, 1)
	c.Store("Sheet1!A1", idA, 1, Num(1))

	c.invalidate(idB, 1)

	_, ok := c.Load("Sheet1!A1")
	assert.False(t, ok)
}

func TestEngineCacheEvictRemovesKeyUnconditionally(t *testing.T) {
	c := newEngineCache(4)
	id := uuid.New()
	c.invalidate(id, 1)
	c.Store("Sheet1!A1", id, 1, Num(1))
	c.Evict("Sheet1!A1")

	_, ok := c.Load("Sheet1!A1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestEngineCacheRefreshMovesToFront(t *testing.T) {
	c := newEngineCache(2)
	id := uuid.New()
	c.invalidate(id, 1)
	c.Store("A", id, 1, Num(1))
	c.Store("B", id, 1, Num(2))
	c.Store("A", id, 1, Num(99)) // refresh A, now B is LRU
	c.Store("C", id, 1, Num(3)) // evicts B

	_, ok := c.Load("B")
	assert.False(t, ok)
	v, ok := c.Load("A")
	require.True(t, ok)
	assert.Equal(t, Num(99), v)
}
