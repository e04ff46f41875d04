package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/config"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Warning: could not load %s (%v); using defaults", cfgPath, err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize memory engine: %v", err)
	}
	defer srv.Close()

	r := srv.SetupRouter()
	log.Printf("Starting server on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal(err)
	}
}
