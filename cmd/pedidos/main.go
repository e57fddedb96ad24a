package main

import (
	"fmt"
	"os"

	"pedidos/internal/config"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if err := newRootCmd(cfg).Execute(); err != nil {
		must(err)
	}
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
