package server

import (
	"log/slog"
	"net/http"

	"finance-dashboard/internal/handlers"
	"finance-dashboard/internal/services"
)

type Server struct {
	ledger      *services.Ledger
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(ledger *services.Ledger, importer *services.Importer, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		ledger:      ledger,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(ledger, importer, logger),
		sseHandlers: handlers.NewSSEHandlers(ledger, importer, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("POST /api/upload", s.apiHandlers.HandleUpload)
	s.mux.HandleFunc("GET /api/accounts", s.apiHandlers.HandleAccounts)
	s.mux.HandleFunc("GET /api/merchants", s.apiHandlers.HandleMerchants)
	s.mux.HandleFunc("GET /api/categories", s.apiHandlers.HandleCategories)
	s.mux.HandleFunc("GET /api/subcategories", s.apiHandlers.HandleSubcategories)
	s.mux.HandleFunc("GET /api/date-range", s.apiHandlers.HandleDateRange)
	s.mux.HandleFunc("GET /api/monthly-aggregate", s.apiHandlers.HandleMonthlyAggregate)
	s.mux.HandleFunc("GET /api/category-distribution", s.apiHandlers.HandleCategoryDistribution)
	s.mux.HandleFunc("GET /api/explorer", s.apiHandlers.HandleExplorer)

	// Datastar SSE endpoints
	s.mux.HandleFunc("POST /sse/upload", s.sseHandlers.HandleUpload)
	s.mux.HandleFunc("GET /sse/filters", s.sseHandlers.HandleFilters)
	s.mux.HandleFunc("GET /sse/monthly-aggregate", s.sseHandlers.HandleMonthlyAggregate)
	s.mux.HandleFunc("GET /sse/category-distribution", s.sseHandlers.HandleCategoryDistribution)
	s.mux.HandleFunc("GET /sse/explorer", s.sseHandlers.HandleExplorer)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
