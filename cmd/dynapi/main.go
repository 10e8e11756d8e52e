package main

import (
	"os"

	"github.com/toyz/dynapi/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
