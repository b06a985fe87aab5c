package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/username/flipfolio/backend/src/config"
	"github.com/username/flipfolio/backend/src/logger"
	"github.com/username/flipfolio/backend/src/models"
	"github.com/username/flipfolio/backend/src/security/validation"
	"github.com/username/flipfolio/backend/src/services"
	"github.com/username/flipfolio/backend/src/utils"
)

type ImportHandler struct {
	importService services.ImportService
}

func NewImportHandler(service services.ImportService) *ImportHandler {
	return &ImportHandler{
		importService: service,
	}
}

// scanRequest carries the OCR collaborator's output: raw recognized
// text plus its overall confidence (0-1 or 0-100, normalized by the
// service).
type scanRequest struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type confirmRequest struct {
	Candidates []models.ImportCandidate `json:"candidates"`
}

type confirmResponse struct {
	Imported int `json:"imported"`
}

func (h *ImportHandler) HandleScan(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "account identification required", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.Cfg.MaxScanSizeBytes)
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.L.Warn("Failed to decode scan request", "accountID", accountID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Invalid scan payload (max %d bytes)", config.Cfg.MaxScanSizeBytes), http.StatusBadRequest)
		return
	}

	if err := validation.ValidateScanText(req.Text, config.Cfg.MaxScanSizeBytes); err != nil {
		logger.L.Warn("Scan payload rejected", "accountID", accountID, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	candidates, err := h.importService.ScanText(r.Context(), accountID, req.Text, req.Confidence)
	if err != nil {
		logger.L.Error("Internal error scanning recognized text", "accountID", accountID, "error", err)
		utils.SendJSONError(w, "An internal error occurred while scanning. Please try again later.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(candidates); err != nil {
		logger.L.Error("Error encoding JSON response for scan result", "accountID", accountID, "error", err)
	}
}

func (h *ImportHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "account identification required", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.Cfg.MaxScanSizeBytes)
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.L.Warn("Failed to decode confirm request", "accountID", accountID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Invalid confirm payload (max %d bytes)", config.Cfg.MaxScanSizeBytes), http.StatusBadRequest)
		return
	}

	imported, err := h.importService.ConfirmImport(r.Context(), accountID, req.Candidates)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoEligibleCandidates):
			logger.L.Warn("Import confirmation with no eligible candidates", "accountID", accountID)
			utils.SendJSONError(w, "No selected candidates with a catalog match to import", http.StatusBadRequest)
		case errors.Is(err, validation.ErrValidationFailed):
			logger.L.Warn("Import confirmation rejected", "accountID", accountID, "error", err)
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			logger.L.Error("Internal error confirming import", "accountID", accountID, "error", err)
			utils.SendJSONError(w, "An internal error occurred while importing. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(confirmResponse{Imported: imported}); err != nil {
		logger.L.Error("Error encoding JSON response for confirm result", "accountID", accountID, "error", err)
	}
}

func (h *ImportHandler) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "account identification required", http.StatusUnauthorized)
		return
	}

	holdings, err := h.importService.ListHoldings(r.Context(), accountID)
	if err != nil {
		logger.L.Error("Error retrieving holdings", "accountID", accountID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving holdings for accountID %d", accountID), http.StatusInternalServerError)
		return
	}
	if holdings == nil {
		holdings = []models.Holding{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(holdings); err != nil {
		logger.L.Error("Error encoding JSON response for holdings", "accountID", accountID, "error", err)
	}
}
