package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "  ", hint)
		}
		os.Exit(1)
	}
}
