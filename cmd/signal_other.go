//go:build !unix

/*
Copyright © 2026 Welborn Productions (welbornprod)
*/

package cmd

import "os"

var interruptSignals = []os.Signal{os.Interrupt}

func ignoreBrokenPipe() {}
