package main

import (
	"os"

	"depscope/internal/cliapp"
)

func main() {
	os.Exit(cliapp.Run(os.Args[1:]))
}
