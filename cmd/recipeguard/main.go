// Command recipeguard is the operator tool for the recipeguard library. It
// validates prompts and responses, inspects and resets rate limit windows,
// runs the environment check and derives cache keys, all against the same
// configuration file an application would load.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintln(os.Stderr, "recipeguard:", err)
		}
		os.Exit(1)
	}
}
