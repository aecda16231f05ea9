package main

import (
	"os"

	"pkgrun/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
