package main

import (
	"log"

	"github.com/maelk/cmdworker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("cmdworker: %v", err)
	}
}
