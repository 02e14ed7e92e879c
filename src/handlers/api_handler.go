package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/username/bankconv/src/logger"
	"github.com/username/bankconv/src/parsers"
	"github.com/username/bankconv/src/services"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "dev"

const (
	defaultConversionsLimit = 50
	maxConversionsLimit     = 500
)

type APIHandler struct {
	uploadService services.UploadService
	maxUploadSize int64
}

func NewAPIHandler(service services.UploadService, maxUploadSize int64) *APIHandler {
	return &APIHandler{uploadService: service, maxUploadSize: maxUploadSize}
}

type infoResponse struct {
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	Profile        string   `json:"profile"`
	Account        string   `json:"account"`
	Formats        []string `json:"formats"`
	MaxUploadBytes int64    `json:"max_upload_bytes"`
}

// HandleInfo doubles as the health check.
func (h *APIHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	profile := h.uploadService.Profile()
	sendJSON(w, r, http.StatusOK, infoResponse{
		Name:           "bankconv",
		Version:        Version,
		Profile:        profile.Name,
		Account:        profile.AccountName,
		Formats:        parsers.Formats(),
		MaxUploadBytes: h.maxUploadSize,
	})
}

// HandleListConversions returns the newest audit rows. The limit query parameter is capped.
func (h *APIHandler) HandleListConversions(w http.ResponseWriter, r *http.Request) {
	limit := defaultConversionsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			sendJSONError(w, r, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxConversionsLimit)
	}

	conversions, err := h.uploadService.RecentConversions(r.Context(), limit)
	if err != nil {
		if errors.Is(err, services.ErrAuditDisabled) {
			sendJSONError(w, r, err.Error(), http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to list conversions", "error", err)
		sendJSONError(w, r, "Failed to list conversions", http.StatusInternalServerError)
		return
	}
	sendJSON(w, r, http.StatusOK, map[string]any{"conversions": conversions})
}

func sendJSON(w http.ResponseWriter, r *http.Request, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.FromContext(r.Context()).Error("Error encoding JSON response", "error", err)
	}
}

func sendJSONError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	logger.FromContext(r.Context()).Warn("Sending JSON error to client", "message", message, "statusCode", statusCode)
	sendJSON(w, r, statusCode, map[string]string{"error": message})
}
