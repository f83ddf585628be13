// Package runner drives a workload.Workload with concurrent workers.
//
// A Client runs the load phase, which inserts the initial accounts, and the transaction phase,
// which executes the configured number of operations or runs until the time limit is reached or the
// context is cancelled. Every worker owns its own store session. A shared rate limiter throttles all
// workers to the target throughput, and a status reporter logs the progress in fixed intervals.
//
// Validation must run after all workers are done, so it is a separate step:
//
//	client, err := runner.NewClient(w, db, runner.WithThreads(8), runner.WithLogger(logger))
//	if err != nil { ... }
//	if _, err = client.Run(ctx); err != nil { ... }
//	result, err := client.Validate(ctx)
package runner
