package main

import (
	"os"

	"github.com/soundprediction/sitegraph/cmd/sitegraph"
)

func main() {
	if err := sitegraph.Execute(); err != nil {
		os.Exit(1)
	}
}
