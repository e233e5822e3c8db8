package main

import (
	"fmt"
	"os"

	"github.com/lk2023060901/coursesize-backend/cmd/coursesize/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
