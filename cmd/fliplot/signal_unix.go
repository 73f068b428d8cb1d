//go:build !windows

package main

import (
	"os"
	"os/signal"
	"syscall"
)

// notifySignals registers OS signal handlers for graceful shutdown.
// On Unix systems, this includes both SIGINT and SIGTERM.
// The returned stop func unregisters ch.
func notifySignals(ch chan<- os.Signal) (stop func()) {
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return func() { signal.Stop(ch) }
}
