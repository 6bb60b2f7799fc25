package main

import (
	"os"

	"chatseal/cmd/chatseal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
