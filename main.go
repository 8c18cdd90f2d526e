package main

import (
	"os"

	"github.com/cwarden/eventlist/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
