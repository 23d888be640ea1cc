// Package resilience provides concurrency isolation primitives.
//
// Bulkhead limits how many calls run at once. In fail-fast mode it rejects
// calls when full; with MaxWait set to WaitIndefinitely it queues callers
// until a slot frees up, which makes it usable as a bounded scheduler:
//
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{
//	    Name:          "forks",
//	    MaxConcurrent: 4,
//	    MaxWait:       resilience.WaitIndefinitely,
//	})
//	go bh.Execute(ctx, work)
package resilience
