// Command ggedit is the photo editor: a browser front end (serve) and a
// batch mode that applies effects to a file (apply).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ggedit:", err)
		os.Exit(1)
	}
}
