// Command jurisrank serves and queries the case-law ranking pipeline.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
