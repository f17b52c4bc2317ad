package main

import (
	"os"

	"github.com/chapunchi/ledger-service/cmd/cli"
)

func main() {
	err := cli.Run()
	if err != nil {
		os.Exit(1)
	}
}
