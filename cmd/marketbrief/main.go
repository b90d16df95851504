package main

import (
	"os"

	"github.com/marketbrief/marketbrief/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
