// Package main SEAT Assistant API Server
//
//	@title			SEAT Assistant API
//	@version		1.0
//	@description	Conversational retrieval-augmented assistant for the SEAT vehicle range
//
//	@contact.name	API Support
//
//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html
//
//	@host		localhost:8080
//	@BasePath	/
package main

import (
	"log"

	"github.com/joho/godotenv"

	_ "seat-assistant/docs" // Imports the docs package to initialize swagger
	"seat-assistant/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	log.Println("Starting SEAT Assistant Server...")
	srv := server.NewServer()
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
