// Command closedeconomy runs the closed-economy transactional workload against a key-value store
// and validates afterwards that no money was created or destroyed.
//
// Usage:
//
//	closedeconomy schema create -P workload.properties --db postgres
//	closedeconomy load -P workload.properties --db postgres --threads 8
//	closedeconomy run -P workload.properties --db postgres --threads 8 -p operationcount=100000
//
// With --db memory all phases run in one process, so run loads the accounts first.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		os.Exit(1)
	}
}
