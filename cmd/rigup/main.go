package main

import (
	"fmt"
	"os"
)

func main() {
	err := newRootCmd(defaultApp()).Execute()
	if err == nil {
		return
	}
	if msg := errorMessage(err); msg != "" {
		fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(exitCodeFor(err))
}
