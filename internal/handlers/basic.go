package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"seat-assistant/internal/models"
)

// ErrorResponse is the shared error payload for handler failures
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// HealthCheckHandler godoc
// @Summary Health check
// @Description Returns server liveness
// @Tags general
// @Produce json
// @Success 200 {object} models.BasicResponse
// @Router /health [get]
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response := models.BasicResponse{
		Message: "Server is healthy",
		Status:  "success",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// HomeHandler godoc
// @Summary Home page
// @Description Returns a welcome message for the assistant server
// @Tags general
// @Produce text/plain
// @Success 200 {string} string "Welcome to the SEAT Assistant!"
// @Router / [get]
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	fmt.Fprintln(w, "Welcome to the SEAT Assistant!")
}
