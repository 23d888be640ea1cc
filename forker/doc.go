// Package forker fans a single read-once source out to many independent
// consumers, each computing its own result concurrently.
//
// Forks are registered under unique keys before dispatch. Dispatch reads the
// source once on the caller's goroutine and appends every element to an
// unbounded per-fork channel, so a slow fork never stalls the others. Each
// fork's transform runs on its own worker and sees a lazy pipeline that blocks
// until the next element or the end of the source arrives.
//
//	f := forker.New[string](pipeline.FromSlice(dishes).Iter(ctx))
//	f.Fork("count", forker.Typed(pipeline.Count[Dish])).
//		Fork("total", forker.Typed(func(ctx context.Context, p *pipeline.Pipeline[Dish]) (int, error) {
//			return pipeline.Sum(ctx, p, func(d Dish) int { return d.Calories })
//		}))
//	res, err := f.Dispatch(ctx)
//	total, err := forker.GetAs[int](ctx, res, "total")
//
// Errors carry codes from package errors: DUPLICATE_KEY and INVALID_STATE from
// registration, SOURCE_FAILED and CANCELLED from Dispatch, UNKNOWN_KEY,
// FORK_FAILED and TYPE_MISMATCH from lookups.
package forker
