package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/celestiaorg/quill/cmd/cli/commands"
)

func main() {
	// A missing .env is fine, flags and the environment still apply
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
