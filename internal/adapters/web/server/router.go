package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/reconrisk/internal/adapters/web/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes builds the router. The returned func releases the rate limiter.
func SetupRoutes(s *Server) (http.Handler, func()) {
	r := mux.NewRouter()
	r.Use(middleware.ActorMiddleware)

	runLimiter := middleware.NewRateLimiter(s.Opts.RunRateLimit, s.Opts.RunRateWindow)
	limit := middleware.RateLimitMiddleware(runLimiter)

	// Evaluation runs (rate limited)
	r.Handle("/api/compliance/{org}/{framework}", limit(http.HandlerFunc(s.ComplianceHandler.HandleRun))).Methods(http.MethodPost)
	r.Handle("/api/risk/{org}", limit(http.HandlerFunc(s.RiskHandler.HandleRun))).Methods(http.MethodPost)

	// Risk ranking
	r.HandleFunc("/api/risk/{org}", s.RiskHandler.HandleList).Methods(http.MethodGet)
	r.HandleFunc("/api/risk/{org}/pdf", s.RiskHandler.HandleExportPDF).Methods(http.MethodGet)

	// Report lifecycle
	r.HandleFunc("/api/reports", s.ComplianceHandler.HandleListReports).Methods(http.MethodGet)
	r.HandleFunc("/api/reports/{id}", s.ComplianceHandler.HandleGetReport).Methods(http.MethodGet)
	r.HandleFunc("/api/reports/{id}/approve", s.ComplianceHandler.HandleApprove).Methods(http.MethodPost)
	r.HandleFunc("/api/reports/{id}/plan", s.ComplianceHandler.HandleUpdatePlan).Methods(http.MethodPut)
	r.HandleFunc("/api/reports/{id}/pdf", s.ComplianceHandler.HandleExportPDF).Methods(http.MethodGet)

	// Audit Logs
	r.HandleFunc("/api/audit-logs", s.AuditHandler.HandleGetLogs).Methods(http.MethodGet)

	// Evaluation events
	r.HandleFunc("/ws", s.Hub.HandleWebSocket)

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	return r, runLimiter.Close
}
