package main

import (
	"flag"
	"log"

	"diradmin/internal/config"
	"diradmin/internal/server"

	"github.com/joho/godotenv"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Secrets may live in a .env next to the binary.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Println("=== DirAdmin — LDAP Directory Console ===")
	log.Printf("Version: %s", version)
	log.Printf("Listening on %s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Directory server: %s", cfg.LDAP.Server)
	log.Printf("Console accounts: %d", len(cfg.Admins))

	if err := server.Start(cfg, version); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
