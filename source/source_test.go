package source

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/scatter"
)

func makePoints(n int) []scatter.Point {
	pts := make([]scatter.Point, n)
	for i := range pts {
		pts[i] = scatter.Point{ID: int64(i + 1), X: float32(i), Y: -float32(i)}
	}
	return pts
}

func TestSliceSourcePagination(t *testing.T) {
	ctx := context.Background()
	src := NewSliceSource(makePoints(25))

	page, err := src.FetchPage(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 10)
	assert.Equal(t, int64(1), page[0].ID)

	page, err = src.FetchPage(ctx, 20, 10)
	require.NoError(t, err)
	require.Len(t, page, 5)
	assert.Equal(t, int64(25), page[4].ID)

	page, err = src.FetchPage(ctx, 25, 10)
	require.NoError(t, err)
	assert.Empty(t, page)

	page, err = src.FetchPage(ctx, -1, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestLoadAllAccumulates(t *testing.T) {
	// Spans two full pages plus a short tail.
	total := DefaultPageSize*2 + 37
	src := NewSliceSource(makePoints(total))

	var got []scatter.Point
	err := LoadAll(context.Background(), src, func(page []scatter.Point) error {
		got = append(got, page...)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, total)
	assert.Equal(t, int64(total), got[total-1].ID)
}

func TestLoadAllEmptySource(t *testing.T) {
	calls := 0
	err := LoadAll(context.Background(), NewSliceSource(nil), func(page []scatter.Point) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, calls, "empty source must not deliver pages")
}

func TestLoadAllStopSentinel(t *testing.T) {
	src := NewSliceSource(makePoints(DefaultPageSize * 3))

	calls := 0
	err := LoadAll(context.Background(), src, func(page []scatter.Point) error {
		calls++
		if calls == 2 {
			return ErrStopped
		}
		return nil
	})
	require.NoError(t, err, "ErrStopped is a clean stop, not a failure")
	assert.Equal(t, 2, calls)

	// Wrapped sentinel stops just as cleanly.
	calls = 0
	err = LoadAll(context.Background(), src, func(page []scatter.Point) error {
		calls++
		return fmt.Errorf("first page is plenty: %w", ErrStopped)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestLoadAllCallbackError(t *testing.T) {
	src := NewSliceSource(makePoints(DefaultPageSize * 3))
	stop := errors.New("enough")

	calls := 0
	err := LoadAll(context.Background(), src, func(page []scatter.Point) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestLoadAllCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := LoadAll(ctx, NewSliceSource(makePoints(5)), func(page []scatter.Point) error {
		t.Fatal("callback must not run after cancellation")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}
