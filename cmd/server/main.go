// Package main implements the entry point for the Paperboy API server,
// which fetches recent research papers, summarizes them, and emails
// subscribers a daily digest.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
)

func main() {
	// Load a local .env file when present; real deployments set the
	// environment directly and have no such file.
	_ = godotenv.Load()

	ctx := context.Background()

	app, err := newApplication(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.cleanup()

	if err := app.run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
