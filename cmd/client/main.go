package main

import (
	"log"
	"os"
)

// main is the client composition root. Commands wire concrete adapters
// (HTTP backend, segment cache) behind ports in wire.go.
func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
