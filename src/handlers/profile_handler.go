package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/flipfolio/backend/src/logger"
	"github.com/username/flipfolio/backend/src/services"
	"github.com/username/flipfolio/backend/src/utils"
)

type ProfileHandler struct {
	tradeService services.TradeService
}

func NewProfileHandler(service services.TradeService) *ProfileHandler {
	return &ProfileHandler{
		tradeService: service,
	}
}

// HandleGetProfile serves the derived trading profile with ETag
// support; the profile only changes when the underlying trades do.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "account identification required", http.StatusUnauthorized)
		return
	}
	logger.L.Debug("Handling GetProfile request with ETag support", "accountID", accountID)

	profile, err := h.tradeService.GetProfile(r.Context(), accountID)
	if err != nil {
		logger.L.Error("Error retrieving trading profile", "accountID", accountID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving trading profile for accountID %d", accountID), http.StatusInternalServerError)
		return
	}

	currentETag, etagErr := utils.GenerateETag(profile)
	if etagErr != nil {
		logger.L.Error("Failed to generate ETag for trading profile", "accountID", accountID, "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		clientETag := r.Header.Get("If-None-Match")
		for _, cETag := range strings.Split(clientETag, ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				logger.L.Info("ETag match for trading profile", "accountID", accountID, "etag", currentETag)
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	} else {
		logger.L.Warn("Proceeding without ETag check due to ETag generation error or empty ETag", "accountID", accountID)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(profile); err != nil {
		logger.L.Error("Error generating JSON response for trading profile", "accountID", accountID, "error", err)
	}
}
