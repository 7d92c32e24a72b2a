package main

import (
	"log"
	"os"

	"ai-docchat-be/pkg/database"
	"ai-docchat-be/pkg/vectorstore/pgstore"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting vector store migration...")

	// 3. Extension plus chunk tables. Only needed for VECTOR_DRIVER=postgres;
	// the chromem driver manages its own files.
	if err := pgstore.Migrate(db); err != nil {
		log.Fatalf("Error: Migration failed: %v", err)
	}

	log.Println("✅ Success: Vector store migration completed via GORM.")
}
