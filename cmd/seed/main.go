// Command seed populates the development database with sample data.
package main

import (
	"flag"
	"log"

	"github.com/KarunyaReddyJ/My-Blog-App/internal/config"
	"github.com/KarunyaReddyJ/My-Blog-App/internal/database"
	"github.com/KarunyaReddyJ/My-Blog-App/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "log planned writes without touching the database")
	users := flag.Int("users", 5, "number of sample users")
	blogsPerUser := flag.Int("blogs-per-user", 6, "number of blogs per user")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	opts := seed.Options{
		DryRun:       *dryRun,
		Users:        *users,
		BlogsPerUser: *blogsPerUser,
		MaxDays:      90,
	}
	if err := seed.Run(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
