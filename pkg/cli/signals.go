package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler derives a context from parent that is cancelled on
// SIGINT or SIGTERM, so governed runs and the spool watcher shut down
// cleanly. The returned stop function releases the signal registration;
// a second signal after cancellation terminates the process with the
// default behavior.
func SetupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
