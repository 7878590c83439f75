package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gorilla/mux"

	"seat-assistant/config"
	"seat-assistant/internal/models"
)

// InfoHandler serves the static lookups behind the non-search intents:
// dealer directory, financing copy, spec-sheet files and test-drive leads.
type InfoHandler struct {
	cfg    *config.AssistantConfig
	logger *log.Logger
}

// NewInfoHandler creates a new static-lookup handler
func NewInfoHandler(cfg *config.AssistantConfig, logger *log.Logger) *InfoHandler {
	return &InfoHandler{
		cfg:    cfg,
		logger: logger,
	}
}

// Dealers returns the dealer directory, optionally filtered by province
// @Summary Dealer directory
// @Description Look up official dealers, optionally by province
// @Tags info
// @Produce json
// @Param province query string false "Province name"
// @Success 200 {object} map[string]string
// @Failure 404 {object} ErrorResponse
// @Router /dealers [get]
func (h *InfoHandler) Dealers(w http.ResponseWriter, r *http.Request) {
	province := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("province")))

	if province != "" {
		dealer, ok := h.cfg.Dealers[province]
		if !ok {
			h.sendError(w, http.StatusNotFound, fmt.Sprintf("No dealer listed for province: %s", province))
			return
		}
		h.sendJSON(w, http.StatusOK, map[string]string{province: dealer})
		return
	}

	h.sendJSON(w, http.StatusOK, h.cfg.Dealers)
}

// Financing returns the financing information text
// @Summary Financing information
// @Description Returns the current financing conditions
// @Tags info
// @Produce json
// @Success 200 {object} models.BasicResponse
// @Router /financing [get]
func (h *InfoHandler) Financing(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, models.BasicResponse{
		Message: h.cfg.FinancingInfo,
		Status:  "success",
	})
}

// SpecSheet delivers the technical spec-sheet PDF for a model
// @Summary Download spec sheet
// @Description Delivers the technical spec-sheet PDF for a model slug
// @Tags info
// @Produce application/pdf
// @Param model path string true "Model slug"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /spec-sheets/{model} [get]
func (h *InfoHandler) SpecSheet(w http.ResponseWriter, r *http.Request) {
	model := strings.ToLower(mux.Vars(r)["model"])

	filename, ok := h.cfg.SpecSheets[model]
	if !ok {
		h.sendError(w, http.StatusNotFound,
			fmt.Sprintf("Unknown model %q. Available models: %s", model, strings.Join(h.modelList(), ", ")))
		return
	}

	path := filepath.Join(h.cfg.SpecSheetDir, filename)
	if _, err := os.Stat(path); err != nil {
		h.logger.Printf("Spec sheet file missing for %s: %v", model, err)
		h.sendError(w, http.StatusNotFound, fmt.Sprintf("Spec sheet for %s is currently unavailable", model))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, path)
}

// TestDrive accepts a test-drive lead submission
// @Summary Book a test drive
// @Description Accepts a test-drive lead; a dealer follows up out of band
// @Tags info
// @Accept json
// @Produce json
// @Param request body models.TestDriveRequest true "Test drive lead"
// @Success 200 {object} models.BasicResponse
// @Failure 400 {object} ErrorResponse
// @Router /test-drive [post]
func (h *InfoHandler) TestDrive(w http.ResponseWriter, r *http.Request) {
	var request models.TestDriveRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if request.Name == "" || request.Email == "" || request.Model == "" {
		h.sendError(w, http.StatusBadRequest, "Fields name, email and model are required")
		return
	}

	model := strings.ToLower(request.Model)
	if _, ok := h.cfg.SpecSheets[model]; !ok {
		h.sendError(w, http.StatusBadRequest,
			fmt.Sprintf("Unknown model %q. Available models: %s", request.Model, strings.Join(h.modelList(), ", ")))
		return
	}

	// Leads are handed off out of band; there is nothing to persist here
	h.logger.Printf("Test drive lead: model=%s province=%s email=%s", model, request.Province, request.Email)

	h.sendJSON(w, http.StatusOK, models.BasicResponse{
		Message: fmt.Sprintf("Thanks %s! A dealer will contact you shortly to arrange your %s test drive.",
			request.Name, request.Model),
		Status: "success",
	})
}

func (h *InfoHandler) modelList() []string {
	names := make([]string, 0, len(h.cfg.SpecSheets))
	for name := range h.cfg.SpecSheets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *InfoHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *InfoHandler) sendError(w http.ResponseWriter, status int, message string) {
	h.sendJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Status:  status,
	})
}
