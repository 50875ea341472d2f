// Package parallel runs independent units of work on a bounded pool. Every
// unit owns one result slot; its error, or a recovered panic, stays in that
// slot and never stops the other units.
package parallel

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one unit of work. Index is the position of the
// input item.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// PanicError wraps a panic recovered from a unit of work
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Map calls fn for every item with at most limit calls in flight and returns
// the results in input order. limit <= 0 means runtime.NumCPU().
//
// Items that have not started when ctx is done are not run; their slot
// carries ctx.Err().
func Map[In, Out any](ctx context.Context, limit int, items []In, fn func(context.Context, In) (Out, error)) []Result[Out] {
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	results := make([]Result[Out], len(items))

	var g errgroup.Group
	g.SetLimit(limit)

	for i, item := range items {
		results[i].Index = i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Value, results[i].Err = call(ctx, item, fn)
			return nil
		})
	}

	// units never return an error to the group
	_ = g.Wait()

	return results
}

func call[In, Out any](ctx context.Context, item In, fn func(context.Context, In) (Out, error)) (out Out, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn(ctx, item)
}

// Errors returns the failed results
func Errors[T any](results []Result[T]) []Result[T] {
	var failed []Result[T]
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
