package main

import (
	"os"

	"github.com/vaultpass/sharepass-go/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
