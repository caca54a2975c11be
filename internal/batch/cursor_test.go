package batch

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// sliceRows is an in-memory Rows over a slice of ints.
type sliceRows struct {
	vals   []int
	pos    int
	err    error
	errAt  int
	closed int
}

func (r *sliceRows) Next() bool {
	if r.err != nil && r.pos == r.errAt {
		return false
	}
	if r.pos >= len(r.vals) {
		return false
	}
	r.pos++
	return true
}

func (r *sliceRows) Scan(dest ...any) error {
	*(dest[0].(*int)) = r.vals[r.pos-1]
	return nil
}

func (r *sliceRows) Err() error {
	if r.pos == r.errAt {
		return r.err
	}
	return nil
}

func (r *sliceRows) Close() error {
	r.closed++
	return nil
}

func scanInt(s Scanner) (int, error) {
	var v int
	err := s.Scan(&v)
	return v, err
}

func TestCursor_ChunksPreserveOrder(t *testing.T) {
	t.Parallel()

	rows := &sliceRows{vals: []int{1, 2, 3, 4, 5}}
	c := New(rows, 2, scanInt)

	var got [][]int
	for chunk, err := range c.All(context.Background()) {
		require.NoError(t, err)
		got = append(got, chunk)
	}

	require.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, got)
	require.EqualValues(t, 5, c.Read())
	require.EqualValues(t, 3, c.Chunks())
	require.Equal(t, 1, rows.closed)
}

func TestCursor_ExactMultipleHasNoEmptyTail(t *testing.T) {
	t.Parallel()

	c := New(&sliceRows{vals: []int{1, 2, 3, 4}}, 2, scanInt)
	ctx := context.Background()

	first, err := c.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, first)

	second, err := c.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{3, 4}, second)

	_, err = c.Next(ctx)
	require.ErrorIs(t, err, io.EOF)

	// Not restartable.
	_, err = c.Next(ctx)
	require.ErrorIs(t, err, io.EOF)
}

func TestCursor_EmptySource(t *testing.T) {
	t.Parallel()

	c := New(&sliceRows{}, 3, scanInt)
	n := 0
	for range c.All(context.Background()) {
		n++
	}
	require.Zero(t, n)
}

func TestCursor_DefaultSize(t *testing.T) {
	t.Parallel()

	c := New(&sliceRows{}, 0, scanInt)
	require.Equal(t, DefaultSize, c.Size())
}

func TestCursor_RowsErrIsReturned(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	rows := &sliceRows{vals: []int{1, 2, 3}, err: boom, errAt: 1}
	c := New(rows, 2, scanInt)

	var errs []error
	for chunk, err := range c.All(context.Background()) {
		if err != nil {
			errs = append(errs, err)
			require.Nil(t, chunk)
		}
	}
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], boom)
	require.Equal(t, 1, rows.closed)
}

func TestCursor_ScanErrorStops(t *testing.T) {
	t.Parallel()

	bad := errors.New("bad value")
	c := New(&sliceRows{vals: []int{1, 2}}, 5, func(s Scanner) (int, error) {
		return 0, bad
	})

	_, err := c.Next(context.Background())
	require.ErrorIs(t, err, bad)
	require.Contains(t, err.Error(), "scan row 1")
}

func TestCursor_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(&sliceRows{vals: []int{1}}, 5, scanInt)
	_, err := c.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
