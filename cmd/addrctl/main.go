package main

import (
	"os"

	"github.com/dukerupert/addressbook/cmd/addrctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
