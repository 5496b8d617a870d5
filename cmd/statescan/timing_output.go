package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"statescan/internal/observ"
)

// printTimings prints the stage table; STATESCAN_TIMINGS=json switches to
// the machine-readable report.
func printTimings(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	if os.Getenv("STATESCAN_TIMINGS") == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(timer.Report()); err != nil {
			fmt.Fprintf(out, "timings: %v\n", err)
		}
		return
	}
	fmt.Fprint(out, timer.Summary())
}
