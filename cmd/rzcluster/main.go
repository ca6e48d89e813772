// Command rzcluster clusters CSV point data with HDBSCAN, k-means or a
// Gaussian mixture and reports the result as a table or JSON.
package main

import (
	"os"

	"github.com/pterm/pterm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
