//go:build headless

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "pluck-play was built without audio output (headless tag); use pluck-render instead")
	os.Exit(1)
}
