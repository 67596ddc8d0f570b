package loader_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"happydash/domain/happiness"
	"happydash/internal/errors"
	"happydash/internal/loader"
	"happydash/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

type countingSource struct {
	location string
	calls    atomic.Int64
	delay    time.Duration
	failures int64
	table    *happiness.Table
}

func (s *countingSource) Location() string { return s.location }

func (s *countingSource) Load(ctx context.Context) (*happiness.Table, error) {
	n := s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if n <= s.failures {
		return nil, errors.FetchError(s.location, fmt.Errorf("attempt %d failed", n))
	}
	return s.table, nil
}

func TestTableIsLoadedOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &countingSource{location: "mem://a", table: testkit.SampleTable()}
	l := loader.New(zaptest.NewLogger(t))

	first, err := l.Table(context.Background(), src)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := l.Table(context.Background(), src)
		require.NoError(t, err)
		assert.Same(t, first, again)
	}

	assert.Equal(t, int64(1), src.calls.Load())
	stats := l.Stats()
	assert.Equal(t, int64(1), stats.Loads)
	assert.Equal(t, int64(5), stats.Hits)
	assert.Equal(t, 1, stats.Cached)
}

func TestFailuresAreNotCached(t *testing.T) {
	src := &countingSource{location: "mem://flaky", failures: 2, table: testkit.SampleTable()}
	l := loader.New(nil)

	for i := 0; i < 2; i++ {
		_, err := l.Table(context.Background(), src)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeFetchError))
	}

	table, err := l.Table(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, table.Empty())

	_, err = l.Table(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, int64(3), src.calls.Load())
	assert.Equal(t, int64(2), l.Stats().Failures)
}

func TestConcurrentFirstCallsShareOneLoad(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &countingSource{location: "mem://slow", delay: 50 * time.Millisecond, table: testkit.SampleTable()}
	l := loader.New(nil)

	const callers = 16
	var wg sync.WaitGroup
	tables := make([]*happiness.Table, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tables[i], errs[i] = l.Table(context.Background(), src)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, tables[0], tables[i])
	}
	assert.Equal(t, int64(1), src.calls.Load())
}

func TestLocationsAreCachedSeparately(t *testing.T) {
	a := &countingSource{location: "mem://a", table: happiness.NewTable(nil)}
	b := &countingSource{location: "mem://b", table: testkit.SampleTable()}
	l := loader.New(nil)

	ta, err := l.Table(context.Background(), a)
	require.NoError(t, err)
	tb, err := l.Table(context.Background(), b)
	require.NoError(t, err)

	assert.True(t, ta.Empty())
	assert.False(t, tb.Empty())
	assert.Equal(t, 2, l.Stats().Cached)
}

// gatedSource blocks in Load until release is closed
type gatedSource struct {
	started chan struct{}
	release chan struct{}
	loadErr atomic.Value
	calls   atomic.Int64
	table   *happiness.Table
}

func (s *gatedSource) Location() string { return "mem://gated" }

func (s *gatedSource) Load(ctx context.Context) (*happiness.Table, error) {
	s.calls.Add(1)
	close(s.started)
	<-s.release
	if err := ctx.Err(); err != nil {
		s.loadErr.Store(err)
		return nil, err
	}
	return s.table, nil
}

func TestCancelledCallerDoesNotFailOthers(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &gatedSource{
		started: make(chan struct{}),
		release: make(chan struct{}),
		table:   testkit.SampleTable(),
	}
	l := loader.New(zaptest.NewLogger(t))

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := l.Table(ctxA, src)
		errA <- err
	}()
	<-src.started

	type result struct {
		table *happiness.Table
		err   error
	}
	resB := make(chan result, 1)
	go func() {
		table, err := l.Table(context.Background(), src)
		resB <- result{table, err}
	}()

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(src.release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Same(t, src.table, b.table)
	assert.Nil(t, src.loadErr.Load())

	again, err := l.Table(context.Background(), src)
	require.NoError(t, err)
	assert.Same(t, src.table, again)
	assert.Equal(t, int64(1), src.calls.Load())
}
