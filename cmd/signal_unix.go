//go:build unix

/*
Copyright © 2026 Welborn Productions (welbornprod)
*/

package cmd

import (
	"os"
	"os/signal"
	"syscall"
)

var interruptSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// ignoreBrokenPipe turns SIGPIPE into EPIPE write errors so a closed pager
// ends the search through the normal error path.
func ignoreBrokenPipe() {
	signal.Ignore(syscall.SIGPIPE)
}
