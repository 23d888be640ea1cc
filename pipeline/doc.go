// Package pipeline provides composable, pull-based data pipeline operators.
//
// Pipelines are lazy: no work happens until values are pulled by a terminal.
// Each stage pulls from the previous stage on demand, so a pipeline built on a
// blocking Iterator (such as a forked stream) consumes elements as they arrive.
//
// # Operators
//
//   - Map, MapValues: transform each value
//   - Filter: keep values matching a predicate
//   - Tap: side-effect without altering the value
//   - Take: stop after n values
//   - Reduce: accumulate all values into one result
//   - Concat: join pipelines sequentially
//
// # Terminals
//
//   - Collect, Count, Sum, Join, Fold
//   - MaxBy, MinBy, First
//   - GroupBy
//   - Drain, ForEach
//   - All: range-over-func view
//
// # Usage
//
//	src := pipeline.FromSlice([]int{1, 2, 3, 4, 5})
//	evens := pipeline.Filter(src, func(n int) bool { return n%2 == 0 })
//	total, err := pipeline.Sum(ctx, evens, func(n int) int { return n })
package pipeline
