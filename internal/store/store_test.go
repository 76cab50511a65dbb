package store_test

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakeshift/lakeshift/internal/store"
)

type record struct {
	Name  string
	Count int
}

func TestGetMissing(t *testing.T) {
	s := store.NewMemory[record]()

	value, err := s.Get("absent")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Zero(t, value)
}

func TestPutGet(t *testing.T) {
	s := store.NewMemory[record]()
	s.Put("a", record{Name: "first"})

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, record{Name: "first"}, got)

	s.Put("a", record{Name: "second"})
	got, err = s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, record{Name: "second"}, got)
}

func TestUpdate(t *testing.T) {
	s := store.NewMemory[record]()
	s.Put("a", record{Count: 1})

	err := s.Update("a", func(r record) record {
		r.Count++
		return r
	})
	require.NoError(t, err)

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Count)
}

func TestUpdateMissing(t *testing.T) {
	s := store.NewMemory[record]()
	err := s.Update("absent", func(r record) record { return r })
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestKeys(t *testing.T) {
	s := store.NewMemory[record]()
	assert.Empty(t, s.Keys())

	s.Put("b", record{})
	s.Put("a", record{})

	keys := s.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestConcurrentUpdates(t *testing.T) {
	s := store.NewMemory[record]()
	s.Put("counter", record{})

	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Put(fmt.Sprintf("w%d", i), record{Count: i})
			_ = s.Update("counter", func(r record) record {
				r.Count++
				return r
			})
		}(i)
	}
	wg.Wait()

	got, err := s.Get("counter")
	require.NoError(t, err)
	assert.Equal(t, workers, got.Count)
	assert.Len(t, s.Keys(), workers+1)
}
