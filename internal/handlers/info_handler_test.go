package handlers

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"seat-assistant/config"
	"seat-assistant/internal/models"
)

// ============================================================================
// Test Setup
// ============================================================================

func setupTestInfoHandler(t *testing.T) (*InfoHandler, *config.AssistantConfig) {
	cfg := config.DefaultAssistantConfig()
	logger := log.New(os.Stdout, "[TEST] ", log.LstdFlags)

	return NewInfoHandler(cfg, logger), cfg
}

// ============================================================================
// Tests
// ============================================================================

func TestDealers_FullDirectory(t *testing.T) {
	handler, cfg := setupTestInfoHandler(t)

	req := httptest.NewRequest("GET", "/dealers", nil)
	rec := httptest.NewRecorder()

	handler.Dealers(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var dealers map[string]string
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&dealers))
	assert.Len(t, dealers, len(cfg.Dealers))
	assert.Equal(t, cfg.Dealers["madrid"], dealers["madrid"])
}

func TestDealers_ProvinceFilter(t *testing.T) {
	handler, cfg := setupTestInfoHandler(t)

	req := httptest.NewRequest("GET", "/dealers?province=Barcelona", nil)
	rec := httptest.NewRecorder()

	handler.Dealers(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var dealers map[string]string
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&dealers))
	assert.Len(t, dealers, 1)
	assert.Equal(t, cfg.Dealers["barcelona"], dealers["barcelona"])
}

func TestDealers_UnknownProvince(t *testing.T) {
	handler, _ := setupTestInfoHandler(t)

	req := httptest.NewRequest("GET", "/dealers?province=paris", nil)
	rec := httptest.NewRecorder()

	handler.Dealers(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFinancing(t *testing.T) {
	handler, cfg := setupTestInfoHandler(t)

	req := httptest.NewRequest("GET", "/financing", nil)
	rec := httptest.NewRecorder()

	handler.Financing(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.BasicResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, cfg.FinancingInfo, resp.Message)
	assert.Equal(t, "success", resp.Status)
}

func TestSpecSheet_Download(t *testing.T) {
	handler, cfg := setupTestInfoHandler(t)

	// Point the handler at a real file
	dir := t.TempDir()
	cfg.SpecSheetDir = dir
	assert.NoError(t, os.WriteFile(filepath.Join(dir, cfg.SpecSheets["ibiza"]), []byte("%PDF-1.4 test"), 0o644))

	req := httptest.NewRequest("GET", "/spec-sheets/ibiza", nil)
	req = mux.SetURLVars(req, map[string]string{"model": "ibiza"})
	rec := httptest.NewRecorder()

	handler.SpecSheet(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), cfg.SpecSheets["ibiza"])
	assert.Contains(t, rec.Body.String(), "%PDF")
}

func TestSpecSheet_UnknownModel(t *testing.T) {
	handler, _ := setupTestInfoHandler(t)

	req := httptest.NewRequest("GET", "/spec-sheets/panda", nil)
	req = mux.SetURLVars(req, map[string]string{"model": "panda"})
	rec := httptest.NewRecorder()

	handler.SpecSheet(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	// The error lists the models the caller can actually ask for
	assert.Contains(t, resp.Message, "ibiza")
}

func TestSpecSheet_FileMissing(t *testing.T) {
	handler, cfg := setupTestInfoHandler(t)
	cfg.SpecSheetDir = t.TempDir() // known model, no file on disk

	req := httptest.NewRequest("GET", "/spec-sheets/leon", nil)
	req = mux.SetURLVars(req, map[string]string{"model": "leon"})
	rec := httptest.NewRecorder()

	handler.SpecSheet(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTestDrive_Success(t *testing.T) {
	handler, _ := setupTestInfoHandler(t)

	body, _ := json.Marshal(models.TestDriveRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Phone:    "600123456",
		Model:    "Arona",
		Province: "valencia",
	})

	req := httptest.NewRequest("POST", "/test-drive", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.TestDrive(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.BasicResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Message, "Ana")
	assert.Contains(t, resp.Message, "Arona")
}

func TestTestDrive_Validation(t *testing.T) {
	handler, _ := setupTestInfoHandler(t)

	tests := []struct {
		name    string
		request models.TestDriveRequest
	}{
		{
			name:    "Missing name",
			request: models.TestDriveRequest{Email: "a@b.com", Model: "ibiza"},
		},
		{
			name:    "Missing email",
			request: models.TestDriveRequest{Name: "Ana", Model: "ibiza"},
		},
		{
			name:    "Missing model",
			request: models.TestDriveRequest{Name: "Ana", Email: "a@b.com"},
		},
		{
			name:    "Unknown model",
			request: models.TestDriveRequest{Name: "Ana", Email: "a@b.com", Model: "panda"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.request)

			req := httptest.NewRequest("POST", "/test-drive", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.TestDrive(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestTestDrive_InvalidBody(t *testing.T) {
	handler, _ := setupTestInfoHandler(t)

	req := httptest.NewRequest("POST", "/test-drive", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()

	handler.TestDrive(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
