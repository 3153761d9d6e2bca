package main

import (
	"os"

	"github.com/srcmap-tools/srcmap/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
