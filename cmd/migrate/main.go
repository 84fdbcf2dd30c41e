package main

import (
	"log"

	"github.com/anyoshi/bingo-live/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[FATAL] config: %v", err)
	}
	if _, err := config.OpenDatabase(cfg); err != nil {
		log.Fatalf("[FATAL] Migration failed: %v", err)
	}
	log.Println("Database migration completed")
}
