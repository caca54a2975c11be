// Package batch turns a streaming query result into fixed-size chunks.
//
// A Cursor drains rows from the source one at a time and hands them to the
// caller in chunks of at most Size rows, so peak memory stays around one
// chunk regardless of how large the source table is. Chunks preserve source
// order; the final chunk may be partial. A Cursor is not restartable.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
)

// DefaultSize is the chunk size used when a non-positive size is given.
const DefaultSize = 5000

// Rows is the subset of *sql.Rows a Cursor needs.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Scanner is what a ScanFunc receives for the current row.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanFunc converts the current row into a typed record.
type ScanFunc[T any] func(Scanner) (T, error)

// Cursor yields chunks of typed records from Rows.
type Cursor[T any] struct {
	rows Rows
	size int
	scan ScanFunc[T]

	read   int64
	chunks int64
	done   bool
}

// New wraps rows. The Cursor owns rows and closes them once exhausted or on
// the first error.
func New[T any](rows Rows, size int, scan ScanFunc[T]) *Cursor[T] {
	if size <= 0 {
		size = DefaultSize
	}
	return &Cursor[T]{rows: rows, size: size, scan: scan}
}

// Size reports the configured chunk size.
func (c *Cursor[T]) Size() int { return c.size }

// Read reports the number of rows scanned so far.
func (c *Cursor[T]) Read() int64 { return c.read }

// Chunks reports the number of chunks returned so far.
func (c *Cursor[T]) Chunks() int64 { return c.chunks }

// Next returns the next chunk. It returns io.EOF once the source is
// exhausted. Each chunk is a new slice that the caller may keep.
func (c *Cursor[T]) Next(ctx context.Context) ([]T, error) {
	if c.done {
		return nil, io.EOF
	}
	if c.scan == nil {
		c.finish()
		return nil, fmt.Errorf("batch: scan func must not be nil")
	}

	chunk := make([]T, 0, c.size)
	for len(chunk) < c.size {
		if err := ctx.Err(); err != nil {
			c.finish()
			return nil, err
		}
		if !c.rows.Next() {
			err := c.rows.Err()
			c.finish()
			if err != nil {
				return nil, fmt.Errorf("batch: read row %d: %w", c.read+1, err)
			}
			if len(chunk) == 0 {
				return nil, io.EOF
			}
			c.chunks++
			return chunk, nil
		}
		rec, err := c.scan(c.rows)
		if err != nil {
			c.finish()
			return nil, fmt.Errorf("batch: scan row %d: %w", c.read+1, err)
		}
		c.read++
		chunk = append(chunk, rec)
	}
	c.chunks++
	return chunk, nil
}

// All returns the remaining chunks as a sequence. Iteration stops after the
// first error, which is yielded with a nil chunk.
func (c *Cursor[T]) All(ctx context.Context) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		defer c.finish()
		for {
			chunk, err := c.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// Close releases the underlying rows early.
func (c *Cursor[T]) Close() error {
	if c.done {
		return nil
	}
	c.done = true
	return c.rows.Close()
}

func (c *Cursor[T]) finish() {
	if !c.done {
		c.done = true
		_ = c.rows.Close()
	}
}
