package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingSource struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (s *blockingSource) Token(context.Context) (string, error) { return "old", nil }

func (s *blockingSource) Refresh(context.Context) (string, error) {
	s.calls.Add(1)
	<-s.release
	if s.err != nil {
		return "", s.err
	}
	return "fresh", nil
}

func TestSharedRefresh_ConcurrentCallersShareOneRefresh(t *testing.T) {
	src := &blockingSource{release: make(chan struct{})}
	shared := NewSharedRefresh(src, nil)

	const callers = 5
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
		results = make([]string, callers)
	)
	started.Add(callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started.Done()
			tok, err := shared.Refresh(context.Background())
			assert.NoError(t, err)
			results[i] = tok
		}(i)
	}
	started.Wait()
	close(src.release)
	wg.Wait()

	assert.LessOrEqual(t, src.calls.Load(), int32(callers))
	for _, r := range results {
		assert.Equal(t, "fresh", r)
	}
}

func TestSharedRefresh_PropagatesError(t *testing.T) {
	src := &blockingSource{release: make(chan struct{}), err: errors.New("refresh token expired")}
	close(src.release)
	shared := NewSharedRefresh(src, nil)

	_, err := shared.Refresh(context.Background())
	require.Error(t, err)

	tok, err := shared.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "old", tok)
}
