package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/flipfolio/backend/src/config"
	"github.com/username/flipfolio/backend/src/database"
	"github.com/username/flipfolio/backend/src/handlers"
	"github.com/username/flipfolio/backend/src/logger"
	"github.com/username/flipfolio/backend/src/processors"
	"github.com/username/flipfolio/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, X-Account-ID, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Flipfolio backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing report cache...")
	reportCache := cache.New(config.Cfg.ReportCacheTTL, 2*config.Cfg.ReportCacheTTL)
	logger.L.Info("Report cache initialized.")

	logger.L.Info("Initializing services and handlers...")
	catalogService := services.NewCatalogService(
		config.Cfg.CatalogAPIBaseURL,
		config.Cfg.CatalogUserAgent,
		config.Cfg.CatalogCacheTTL,
		config.Cfg.CatalogRatePerSec,
		config.Cfg.CatalogHTTPTimeout,
	)
	importService := services.NewImportService(catalogService, reportCache)
	tradeService := services.NewTradeService(processors.NewProfileProcessor(), reportCache, config.Cfg.ReportCacheTTL)

	importHandler := handlers.NewImportHandler(importService)
	tradeHandler := handlers.NewTradeHandler(tradeService)
	profileHandler := handlers.NewProfileHandler(tradeService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	withAccount := func(handler http.HandlerFunc) http.Handler {
		return handlers.AccountMiddleware(handler)
	}

	apiRouter.Handle("POST /api/import/scan", withAccount(importHandler.HandleScan))
	apiRouter.Handle("POST /api/import/confirm", withAccount(importHandler.HandleConfirm))
	apiRouter.Handle("GET /api/holdings", withAccount(importHandler.HandleGetHoldings))
	apiRouter.Handle("GET /api/trades", withAccount(tradeHandler.HandleListTrades))
	apiRouter.Handle("POST /api/trades", withAccount(tradeHandler.HandleCreateTrade))
	apiRouter.Handle("POST /api/trades/{id}/close", withAccount(tradeHandler.HandleCloseTrade))
	apiRouter.Handle("DELETE /api/trades/{id}", withAccount(tradeHandler.HandleDeleteTrade))
	apiRouter.Handle("GET /api/profile", withAccount(profileHandler.HandleGetProfile))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "FLIPFOLIO Backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
