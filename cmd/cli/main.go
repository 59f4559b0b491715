// Command nd is a terminal client for the news management backend.
package main

import (
	"fmt"
	"os"

	"github.com/and161185/newsdesk/internal/errs"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main runs the app; pipeline failures were already reported to stderr.
func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		if errs.AsFailure(err) == nil {
			fmt.Fprintln(os.Stderr, "nd:", err)
		}
		os.Exit(1)
	}
}
