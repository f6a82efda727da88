package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sheetKey struct {
	Date  string
	Sheet string
}

func TestStoreGetSetDelete(t *testing.T) {
	s := New[sheetKey, int]()
	k := sheetKey{"08.09", "0"}

	_, ok := s.Get(k)
	assert.False(t, ok)

	s.Set(k, 7)
	v, ok := s.Get(k)
	assert.True(t, ok)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, s.Len())

	s.Delete(k)
	_, ok = s.Get(k)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStoreDeleteFunc(t *testing.T) {
	s := New[sheetKey, int]()
	s.Set(sheetKey{"08.09", "0"}, 1)
	s.Set(sheetKey{"08.09", "1"}, 2)
	s.Set(sheetKey{"09.09", "0"}, 3)

	s.DeleteFunc(func(k sheetKey) bool { return k.Date == "08.09" })

	assert.Equal(t, 1, s.Len())
	v, ok := s.Get(sheetKey{"09.09", "0"})
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestGetOrLoadSingleFlight(t *testing.T) {
	s := New[string, int]()
	var calls atomic.Int32
	release := make(chan struct{})

	load := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]int, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.GetOrLoad(context.Background(), "k", load)
			assert.NoError(t, err)
			results[i] = v
		}()
	}

	// Give every caller time to join the in-flight load.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 42, v)
	}

	v, err := s.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) {
		t.Fatal("cached value should be returned without loading")
		return 0, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestGetOrLoadErrorNotCached(t *testing.T) {
	s := New[string, int]()
	boom := errors.New("boom")

	_, err := s.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)

	v, err := s.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) {
		return 5, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestGetOrLoadCallerCancelled(t *testing.T) {
	s := New[string, int]()
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetOrLoad(ctx, "k", func(context.Context) (int, error) {
		<-release
		return 1, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeleteDuringLoadDiscardsResult(t *testing.T) {
	s := New[string, int]()
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()

	<-started
	s.Delete("k")
	close(release)
	<-done

	_, ok := s.Get("k")
	assert.False(t, ok)
}
