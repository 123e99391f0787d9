// Package main is the archbrain command: it scans TypeScript and JavaScript
// projects into layered dependency graphs and serves them to the UI and to
// coding agents.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
