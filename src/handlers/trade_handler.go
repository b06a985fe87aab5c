package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/flipfolio/backend/src/logger"
	"github.com/username/flipfolio/backend/src/models"
	"github.com/username/flipfolio/backend/src/security/validation"
	"github.com/username/flipfolio/backend/src/services"
	"github.com/username/flipfolio/backend/src/utils"
)

type TradeHandler struct {
	tradeService services.TradeService
}

func NewTradeHandler(service services.TradeService) *TradeHandler {
	return &TradeHandler{
		tradeService: service,
	}
}

type closeTradeRequest struct {
	SellPrice int64 `json:"sell_price"`
	SellTime  int64 `json:"sell_time,omitempty"`
}

func (h *TradeHandler) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "account identification required", http.StatusUnauthorized)
		return
	}

	reports, err := h.tradeService.ListTrades(r.Context(), accountID)
	if err != nil {
		logger.L.Error("Error retrieving trades", "accountID", accountID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving trades for accountID %d", accountID), http.StatusInternalServerError)
		return
	}
	if reports == nil {
		reports = []models.TradeReport{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reports); err != nil {
		logger.L.Error("Error encoding JSON response for trades", "accountID", accountID, "error", err)
	}
}

func (h *TradeHandler) HandleCreateTrade(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "account identification required", http.StatusUnauthorized)
		return
	}

	var trade models.Trade
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		logger.L.Warn("Failed to decode trade payload", "accountID", accountID, "error", err)
		utils.SendJSONError(w, "Invalid trade payload", http.StatusBadRequest)
		return
	}

	created, err := h.tradeService.CreateTrade(r.Context(), accountID, trade)
	if err != nil {
		if errors.Is(err, validation.ErrValidationFailed) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.L.Error("Internal error creating trade", "accountID", accountID, "error", err)
		utils.SendJSONError(w, "An internal error occurred while creating the trade.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		logger.L.Error("Error encoding JSON response for created trade", "accountID", accountID, "error", err)
	}
}

func (h *TradeHandler) HandleCloseTrade(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "account identification required", http.StatusUnauthorized)
		return
	}

	tradeID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid trade id", http.StatusBadRequest)
		return
	}

	var req closeTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.L.Warn("Failed to decode close payload", "accountID", accountID, "tradeID", tradeID, "error", err)
		utils.SendJSONError(w, "Invalid close payload", http.StatusBadRequest)
		return
	}

	if err := h.tradeService.CloseTrade(r.Context(), accountID, tradeID, req.SellPrice, req.SellTime); err != nil {
		switch {
		case errors.Is(err, services.ErrTradeNotFound):
			utils.SendJSONError(w, "Trade not found or already closed", http.StatusNotFound)
		case errors.Is(err, validation.ErrValidationFailed):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			logger.L.Error("Internal error closing trade", "accountID", accountID, "tradeID", tradeID, "error", err)
			utils.SendJSONError(w, "An internal error occurred while closing the trade.", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TradeHandler) HandleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "account identification required", http.StatusUnauthorized)
		return
	}

	tradeID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid trade id", http.StatusBadRequest)
		return
	}

	if err := h.tradeService.DeleteTrade(r.Context(), accountID, tradeID); err != nil {
		if errors.Is(err, services.ErrTradeNotFound) {
			utils.SendJSONError(w, "Trade not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Internal error deleting trade", "accountID", accountID, "tradeID", tradeID, "error", err)
		utils.SendJSONError(w, "An internal error occurred while deleting the trade.", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
