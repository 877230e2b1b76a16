// Command bindgen writes the C header or WIT package for a binding manifest.
//
//	bindgen c -o bindings.h
//	bindgen wit --manifest my.yaml
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
