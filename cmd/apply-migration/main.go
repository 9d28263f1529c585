package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"medml-backend/internal/config"
	"medml-backend/internal/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("Usage: %s <migration_file.sql>", os.Args[0])
	}

	migrationFile := os.Args[1]
	sqlContent, err := os.ReadFile(migrationFile)
	if err != nil {
		log.Fatalf("Failed to read migration file: %v", err)
	}

	cfg := config.Load()
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}
	defer db.Close()

	fmt.Printf("Connected to database: %s\n\n", cfg.Database.Database)

	// Split SQL by semicolon and execute each statement
	statements := strings.Split(string(sqlContent), ";")
	applied := 0
	for i, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" || strings.HasPrefix(stmt, "--") {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("Statement %d failed: %v\nSQL: %s", i+1, err, stmt)
		}
		applied++
	}

	fmt.Printf("Applied %d statements from %s\n", applied, migrationFile)
}
