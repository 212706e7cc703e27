package main

import (
	"context"
	"log"
	"os"

	"mindcare-chat-be/internal/dataset"
	"mindcare-chat-be/internal/repository/implementation"
	"mindcare-chat-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Seeding Therapist Directory")

	repo := implementation.NewTherapistRepository(db)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	if err != nil {
		log.Fatalf("Error: Failed to count therapists: %v", err)
	}
	if count > 0 {
		color.Yellow("Therapist directory already has %d entries, skipping...", count)
		return
	}

	therapists := dataset.DefaultTherapists()
	if err := repo.CreateBulk(ctx, therapists); err != nil {
		log.Fatalf("Error: Failed to seed therapists: %v", err)
	}

	color.Green("Seeded %d therapists", len(therapists))
}
