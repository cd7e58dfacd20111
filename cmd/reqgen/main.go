// cmd/reqgen/main.go
package main

import (
	"os"

	"alternator-reqgen/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
