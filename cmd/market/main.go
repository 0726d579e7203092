package main

import (
	"fmt"
	"os"

	"github.com/jrsteele09/go-salvage-market/internal/logging"
)

func main() {
	logging.Setup("warn", "DEV", os.Stderr)
	if err := Run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
