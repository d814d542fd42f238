// Command foodgramctl runs schema migrations and loads reference and demo
// data.
package main

import (
	"os"

	"foodgram/internal/cli"
)

func main() {
	os.Exit(cli.New().Execute())
}
