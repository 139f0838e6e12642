package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lcalzada-xor/reconrisk/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/reconrisk/internal/adapters/web/hub"
	"github.com/lcalzada-xor/reconrisk/internal/core/ports"
	"github.com/lcalzada-xor/reconrisk/internal/core/services/batch"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options tunes the HTTP surface.
type Options struct {
	Addr           string
	RunRateLimit   int
	RunRateWindow  time.Duration
	AllowedOrigins []string
}

// Server exposes the evaluation services over HTTP and WebSocket.
type Server struct {
	Addr string
	Opts Options

	Hub               *hub.Hub
	ComplianceHandler *handlers.ComplianceHandler
	RiskHandler       *handlers.RiskHandler
	AuditHandler      *handlers.AuditHandler
	srv               *http.Server
}

// NewServer creates a new web server. The hub is shared with the services that notify it.
func NewServer(opts Options, compliance ports.ComplianceService, risk ports.RiskService, auditService ports.AuditService, exporter ports.ReportExporter, events *hub.Hub, locks *batch.KeyedLocker) *Server {
	if opts.RunRateLimit <= 0 {
		opts.RunRateLimit = 30
	}
	if opts.RunRateWindow <= 0 {
		opts.RunRateWindow = time.Minute
	}
	if events == nil {
		events = hub.New(opts.AllowedOrigins)
	}
	if locks == nil {
		locks = batch.NewKeyedLocker()
	}

	return &Server{
		Addr:              opts.Addr,
		Opts:              opts,
		Hub:               events,
		ComplianceHandler: handlers.NewComplianceHandler(compliance, exporter, locks),
		RiskHandler:       handlers.NewRiskHandler(risk, exporter, locks),
		AuditHandler:      handlers.NewAuditHandler(auditService),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go s.Hub.Run(ctx)

	handler, closeRoutes := SetupRoutes(s)
	defer closeRoutes()

	// "reconrisk-server" names the root span of every request
	instrumentedHandler := otelhttp.NewHandler(handler, "reconrisk-server")

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           instrumentedHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("web server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("web server shutdown error", "error", err)
		}
	}()

	slog.Info("web server listening", "addr", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
