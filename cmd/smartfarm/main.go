package main

import (
	"log"

	"github.com/temantani/smartfarm/internal/app"
	"github.com/temantani/smartfarm/internal/config"
)

func main() {
	log.Println("Starting application...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	a, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := a.Start(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
