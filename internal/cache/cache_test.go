package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_PutOverwritesSilently(t *testing.T) {
	m := NewMap[int, string]()

	_, ok := m.Get(1)
	assert.False(t, ok)

	m.Put(1, "first")
	m.Put(1, "second")

	v, ok := m.Get(1)
	require.True(t, ok)
	assert.Equal(t, "second", v)
	assert.Equal(t, 1, m.Len())

	m.Delete(1)
	_, ok = m.Get(1)
	assert.False(t, ok)

	m.Put(2, "x")
	m.Clear()
	assert.Equal(t, 0, m.Len())
}

func TestNew_SelectsImplementation(t *testing.T) {
	_, isMap := New[int, int](0).(*Map[int, int])
	assert.True(t, isMap)
	_, isLRU := New[int, int](2).(*LRU[int, int])
	assert.True(t, isLRU)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())

	c.Put("a", 10)
	v, _ := c.Get("a")
	assert.Equal(t, 10, v)

	c.Delete("a")
	assert.Equal(t, 1, c.Len())
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestNewLRU_PanicsOnZeroCapacity(t *testing.T) {
	assert.Panics(t, func() { NewLRU[int, int](0) })
}

func TestMap_ConcurrentAccess(t *testing.T) {
	m := NewMap[int, int]()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Put(i*100+j, j)
				m.Get(j)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 800, m.Len())
}

type memoryBackend struct {
	data    map[string][]byte
	loads   int
	loadErr error
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{data: make(map[string][]byte)}
}

func (m *memoryBackend) Load(_ context.Context, ns, key string) ([]byte, bool, error) {
	m.loads++
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	v, ok := m.data[ns+"/"+key]
	return v, ok, nil
}

func (m *memoryBackend) Save(_ context.Context, ns, key string, value []byte) error {
	m.data[ns+"/"+key] = value
	return nil
}

func (m *memoryBackend) Delete(_ context.Context, ns, key string) error {
	delete(m.data, ns+"/"+key)
	return nil
}

func (m *memoryBackend) Clear(_ context.Context, ns string) error {
	for k := range m.data {
		if len(k) > len(ns) && k[:len(ns)+1] == ns+"/" {
			delete(m.data, k)
		}
	}
	return nil
}

func TestBacked_WritesThroughAndPromotes(t *testing.T) {
	backend := newMemoryBackend()
	b := NewBacked[string](NewMap[string, string](), backend, "episodes", StringCodec, nil)

	b.Put("https://example.com/api/episode/1", "Pilot")
	assert.Equal(t, []byte("Pilot"), backend.data["episodes/https://example.com/api/episode/1"])

	fresh := NewBacked[string](NewMap[string, string](), backend, "episodes", StringCodec, nil)
	v, ok := fresh.Get("https://example.com/api/episode/1")
	require.True(t, ok)
	assert.Equal(t, "Pilot", v)
	assert.Equal(t, 1, fresh.Len())

	loads := backend.loads
	_, ok = fresh.Get("https://example.com/api/episode/1")
	require.True(t, ok)
	assert.Equal(t, loads, backend.loads, "promoted entry should be served from memory")
}

func TestBacked_BackendErrorIsMiss(t *testing.T) {
	backend := newMemoryBackend()
	backend.loadErr = errors.New("disk gone")
	b := NewBacked[string](NewMap[string, string](), backend, "episodes", StringCodec, nil)

	_, ok := b.Get("missing")
	assert.False(t, ok)
}

func TestBacked_UndecodableEntryIsMiss(t *testing.T) {
	backend := newMemoryBackend()
	backend.data["n/k"] = []byte("bad")
	codec := Codec[int]{
		Encode: func(v int) ([]byte, error) { return []byte(fmt.Sprint(v)), nil },
		Decode: func(string, []byte) (int, error) { return 0, errors.New("not an int") },
	}
	b := NewBacked[int](NewMap[string, int](), backend, "n", codec, nil)

	_, ok := b.Get("k")
	assert.False(t, ok)
}

func TestBacked_DeleteAndClear(t *testing.T) {
	backend := newMemoryBackend()
	b := NewBacked[string](NewMap[string, string](), backend, "images", StringCodec, nil)
	b.Put("a", "1")
	b.Put("b", "2")

	b.Delete("a")
	_, ok := backend.data["images/a"]
	assert.False(t, ok)

	b.Clear()
	assert.Empty(t, backend.data)
	assert.Equal(t, 0, b.Len())
}
