package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		// Ctrl-C while a scan or the daemon is running surfaces as
		// context.Canceled; that is a clean shutdown, not an error.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "hemascan: %v\n", err)
		}
		os.Exit(1)
	}
}
