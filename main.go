package main

import (
	"os"

	"github.com/Pedro004-dot/alicit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
