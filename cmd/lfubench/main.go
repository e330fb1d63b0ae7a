// Command lfubench runs a skewed, concurrent workload against an LFU cache
// and reports the hit ratio. With --metrics-addr it also serves the cache
// metrics for Prometheus while the workload runs.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
