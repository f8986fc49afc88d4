// Command fintrackctl inspects and moves transaction data without the web UI.
//
//	fintrackctl summary                     totals, monthly summary, alerts
//	fintrackctl export --format yaml        write the collection to stdout
//	fintrackctl import transactions.json    append an exported file
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
