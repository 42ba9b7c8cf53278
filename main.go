package main

import (
	"log"

	"trading-journal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("trading-journal: %v", err)
	}
}
