package main

import (
	"fmt"
	"os"

	"github.com/de-tools/activity-atlas/pkg/runtime/terminal"
	"github.com/de-tools/activity-atlas/pkg/services/registry"
)

func main() {
	vendors, err := registry.NewDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli := terminal.NewCLI(terminal.Options{
		Vendors: vendors,
		Output:  os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
