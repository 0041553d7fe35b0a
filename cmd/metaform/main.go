// Command metaform serves, renders and fills pages described by a metadata
// document.
package main

import (
	"fmt"
	"os"

	"github.com/goliatone/go-metaform/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
