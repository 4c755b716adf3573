// Package shutdown centralizes termination-signal handling so the
// main loop can block until the user asks the process to exit.
package shutdown

import (
	"os"
	"os/signal"
)

// Notify registers ch for the platform's termination signals.
func Notify(ch chan os.Signal) {
	signal.Notify(ch, signals()...)
}

// Wait blocks until a termination signal arrives and returns it.
func Wait() os.Signal {
	ch := make(chan os.Signal, 1)
	Notify(ch)
	return <-ch
}
