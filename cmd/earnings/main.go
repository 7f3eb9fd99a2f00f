package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/rustyeddy/earnings/cmd/earnings/cmd"
)

func main() {
	// Optional .env holds database DSNs referenced from the config.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
