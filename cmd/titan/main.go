package main

import (
	"os"

	"github.com/khulnasoft/titan/internal/shim"
)

var version = "dev"

func main() {
	os.Exit(shim.Run(os.Args[1:], version))
}
