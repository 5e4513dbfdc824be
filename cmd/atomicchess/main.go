// Command atomicchess plays and renders atomic chess positions locally and
// checks connectivity to the Iris gateway.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
