package common

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultFetchLimit bounds concurrent related-record fetches when no limit is given
const DefaultFetchLimit = 4

// Failure records one reference that could not be fetched
type Failure struct {
	Ref string
	Err error
}

// JoinResult holds the settled outcome of FetchAll
type JoinResult[T any] struct {
	// Values holds successful results in input order
	Values []T
	// Failures holds failed references in input order
	Failures []Failure
}

// OK reports whether every reference resolved
func (r JoinResult[T]) OK() bool {
	return len(r.Failures) == 0
}

// FailedRefs returns the references that did not resolve
func (r JoinResult[T]) FailedRefs() []string {
	refs := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		refs = append(refs, f.Ref)
	}
	return refs
}

// FetchAll runs fetch for every reference with at most limit calls in flight,
// waits for all of them to settle and joins the outcomes.
// A failed reference never discards the others.
func FetchAll[T any](ctx context.Context, refs []string, limit int, fetch func(context.Context, string) (T, error)) JoinResult[T] {
	if len(refs) == 0 {
		return JoinResult[T]{Values: []T{}, Failures: []Failure{}}
	}
	if limit <= 0 {
		limit = DefaultFetchLimit
	}

	type slot struct {
		value T
		err   error
	}
	// Each goroutine owns one slot
	slots := make([]slot, len(refs))

	// The group context is not used: one error must not cancel its siblings
	var g errgroup.Group
	g.SetLimit(limit)

	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				slots[i] = slot{err: err}
				return nil
			}
			value, err := fetch(ctx, ref)
			slots[i] = slot{value: value, err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := JoinResult[T]{Values: make([]T, 0, len(refs)), Failures: []Failure{}}
	for i, s := range slots {
		switch {
		case s.err != nil:
			result.Failures = append(result.Failures, Failure{Ref: refs[i], Err: s.err})
		default:
			result.Values = append(result.Values, s.value)
		}
	}
	return result
}
