package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/flipfolio/backend/src/models"
	"github.com/username/flipfolio/backend/src/security/validation"
	"github.com/username/flipfolio/backend/src/services"
)

type stubTradeService struct {
	created    models.Trade
	createErr  error
	closeErr   error
	deleteErr  error
	reports    []models.TradeReport
	listErr    error
	profile    models.TradingProfile
	profileErr error
}

func (s *stubTradeService) CreateTrade(ctx context.Context, accountID int64, trade models.Trade) (models.Trade, error) {
	return s.created, s.createErr
}

func (s *stubTradeService) CloseTrade(ctx context.Context, accountID, tradeID, sellPrice, sellTimeMs int64) error {
	return s.closeErr
}

func (s *stubTradeService) DeleteTrade(ctx context.Context, accountID, tradeID int64) error {
	return s.deleteErr
}

func (s *stubTradeService) ListTrades(ctx context.Context, accountID int64) ([]models.TradeReport, error) {
	return s.reports, s.listErr
}

func (s *stubTradeService) GetProfile(ctx context.Context, accountID int64) (models.TradingProfile, error) {
	return s.profile, s.profileErr
}

func doPathRequest(handler http.HandlerFunc, method, target, tradeID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("X-Account-ID", "7")
	req.SetPathValue("id", tradeID)
	rr := httptest.NewRecorder()
	AccountMiddleware(handler).ServeHTTP(rr, req)
	return rr
}

func TestHandleCreateTrade(t *testing.T) {
	setupHandlerTest(t)
	svc := &stubTradeService{created: models.Trade{ID: 12, AccountID: 7, ItemName: "Coal", Quantity: 100, BuyPrice: 150}}
	handler := NewTradeHandler(svc)

	rr := doRequest(handler.HandleCreateTrade, http.MethodPost, "/api/trades", "7",
		`{"item_name":"Coal","quantity":100,"buy_price":150}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created models.Trade
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, int64(12), created.ID)
}

func TestHandleCreateTradeValidationError(t *testing.T) {
	setupHandlerTest(t)
	svc := &stubTradeService{createErr: fmt.Errorf("%w: quantity must be positive", validation.ErrValidationFailed)}
	handler := NewTradeHandler(svc)

	rr := doRequest(handler.HandleCreateTrade, http.MethodPost, "/api/trades", "7",
		`{"item_name":"Coal","quantity":0,"buy_price":150}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleCloseTrade(t *testing.T) {
	setupHandlerTest(t)
	handler := NewTradeHandler(&stubTradeService{})

	rr := doPathRequest(handler.HandleCloseTrade, http.MethodPost, "/api/trades/12/close", "12", `{"sell_price":200}`)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = doPathRequest(handler.HandleCloseTrade, http.MethodPost, "/api/trades/abc/close", "abc", `{"sell_price":200}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	notFound := NewTradeHandler(&stubTradeService{closeErr: services.ErrTradeNotFound})
	rr = doPathRequest(notFound.HandleCloseTrade, http.MethodPost, "/api/trades/99/close", "99", `{"sell_price":200}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleDeleteTrade(t *testing.T) {
	setupHandlerTest(t)
	handler := NewTradeHandler(&stubTradeService{})

	rr := doPathRequest(handler.HandleDeleteTrade, http.MethodDelete, "/api/trades/12", "12", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	notFound := NewTradeHandler(&stubTradeService{deleteErr: services.ErrTradeNotFound})
	rr = doPathRequest(notFound.HandleDeleteTrade, http.MethodDelete, "/api/trades/99", "99", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleListTradesEmpty(t *testing.T) {
	setupHandlerTest(t)
	handler := NewTradeHandler(&stubTradeService{})

	rr := doRequest(handler.HandleListTrades, http.MethodGet, "/api/trades", "7", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func TestHandleGetProfileETag(t *testing.T) {
	setupHandlerTest(t)
	svc := &stubTradeService{profile: models.TradingProfile{
		TotalTrades:          3,
		RiskProfile:          models.RiskModerate,
		MembershipPreference: models.PrefBoth,
	}}
	handler := NewProfileHandler(svc)

	rr := doRequest(handler.HandleGetProfile, http.MethodGet, "/api/profile", "7", "")
	require.Equal(t, http.StatusOK, rr.Code)
	etag := rr.Header().Get("ETag")
	require.NotEmpty(t, etag)

	var profile models.TradingProfile
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &profile))
	assert.Equal(t, 3, profile.TotalTrades)

	// Same underlying data, matching client ETag: not modified.
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("X-Account-ID", "7")
	req.Header.Set("If-None-Match", etag)
	rr2 := httptest.NewRecorder()
	AccountMiddleware(http.HandlerFunc(handler.HandleGetProfile)).ServeHTTP(rr2, req)
	assert.Equal(t, http.StatusNotModified, rr2.Code)
	assert.Empty(t, rr2.Body.String())
}
