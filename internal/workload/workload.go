// Package workload declares the capability set a driver runs against: the
// "Test Interface" from the design — setup, teardown, one iteration of work,
// and the bits of metadata the driver needs to reconcile a configured item
// rate with the workload's own notion of an iteration.
package workload

import "context"

// Workload is implemented by whatever the driver is measuring. The driver
// is generic over any implementer; it never inspects concrete workload
// types, only calls through this interface.
type Workload interface {
	// Setup runs once before any worker starts. Its failure aborts the run.
	Setup(ctx context.Context) error
	// Teardown runs once after every worker has finished, even if the run
	// failed or every iteration errored.
	Teardown(ctx context.Context) error
	// PerformIteration performs one unit of work. It may fail; a failure is
	// counted, never propagated out of the worker loop.
	PerformIteration(ctx context.Context) error
	// ItemsPerIteration is the number of work items one iteration
	// represents, used only to reconcile a rate configured in items with
	// the per-iteration scheduling interval.
	ItemsPerIteration() int
	// TestRunData is opaque, workload-provided configuration embedded
	// verbatim in the final report.
	TestRunData() map[string]any
}

// Base supplies the defaults a workload gets "for free" in source languages
// that default items-per-iteration to 1 and test-run-data to empty via
// inheritance. Embed Base in a concrete workload and override only what
// differs.
type Base struct{}

func (Base) ItemsPerIteration() int { return 1 }

func (Base) TestRunData() map[string]any { return map[string]any{} }
