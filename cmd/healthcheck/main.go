package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/nutricart/nutricart-api/internal/config"
	"github.com/nutricart/nutricart-api/internal/database"
	"github.com/nutricart/nutricart-api/internal/logger"
	"github.com/nutricart/nutricart-api/internal/services"
)

func main() {
	logger.Init()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	result := services.HealthCheck(cfg, db)

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	if result.Status == "unhealthy" {
		os.Exit(1)
	}
}
