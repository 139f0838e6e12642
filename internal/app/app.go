package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lcalzada-xor/reconrisk/internal/adapters/inventory"
	"github.com/lcalzada-xor/reconrisk/internal/adapters/reporting"
	"github.com/lcalzada-xor/reconrisk/internal/adapters/storage"
	"github.com/lcalzada-xor/reconrisk/internal/adapters/web/hub"
	webserver "github.com/lcalzada-xor/reconrisk/internal/adapters/web/server"
	"github.com/lcalzada-xor/reconrisk/internal/config"
	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
	"github.com/lcalzada-xor/reconrisk/internal/core/ports"
	"github.com/lcalzada-xor/reconrisk/internal/core/services/audit"
	"github.com/lcalzada-xor/reconrisk/internal/core/services/batch"
	"github.com/lcalzada-xor/reconrisk/internal/core/services/compliance"
	"github.com/lcalzada-xor/reconrisk/internal/core/services/risk"
	"github.com/lcalzada-xor/reconrisk/internal/mock"
	"github.com/lcalzada-xor/reconrisk/internal/telemetry"
)

// expiryInterval is how often the server sweeps reports past their validity window.
const expiryInterval = time.Hour

// demoOrganizations are seeded into the in-memory store in demo mode.
var demoOrganizations = map[string]string{
	"Acme Corp": "basic",
	"Globex":    "vulnerable",
	"Initech":   "crowded",
}

// Application holds the core components of the application.
// It acts as the Facade for the entire system, orchestrating services and infrastructure.
type Application struct {
	Config *config.Config
	Rules  *domain.RuleConfig
	Store  ports.Storage

	AuditService *audit.AuditService
	Compliance   *compliance.Engine
	Risk         *risk.Engine
	Runner       *batch.Runner
	Locks        *batch.KeyedLocker
	Exporter     *reporting.PDFExporter
	Importer     *inventory.Loader
	Hub          *hub.Hub
	WebServer    *webserver.Server
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		Config: cfg,
	}

	if err := app.bootstrap(); err != nil {
		if app.Store != nil {
			app.Store.Close()
		}
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	// 1. Foundation & Infrastructure
	telemetry.InitMetrics()

	rules, err := config.LoadRules(app.Config.RulesPath)
	if err != nil {
		return err
	}
	app.Rules = rules

	if err := app.initStorage(); err != nil {
		return err
	}

	// 2. Domain Services
	app.AuditService = audit.NewAuditService(app.Store)

	ruleSet, err := compliance.NewRuleSet(rules)
	if err != nil {
		return err
	}
	app.Compliance = compliance.NewEngine(app.Store, app.Store, ruleSet)
	app.Compliance.SetAuditService(app.AuditService)
	app.Compliance.SetValidity(app.Config.ReportValidity())

	calculator := risk.NewCriticalityCalculator(app.Store, rules)
	app.Risk = risk.NewEngine(app.Store, app.Store, calculator)
	app.Risk.SetAuditService(app.AuditService)

	// 3. Orchestration
	app.Locks = batch.NewKeyedLocker()
	app.Runner = batch.NewRunner(app.Compliance, app.Risk, app.Locks)
	app.Runner.SetWorkers(app.Config.Workers)
	app.Runner.SetTimeout(app.Config.RunTimeout)

	app.Exporter = reporting.NewPDFExporter()
	app.Importer = inventory.NewLoader(app.Store)
	app.Importer.SetAuditService(app.AuditService)

	// 4. Servers
	app.Hub = hub.New(app.Config.AllowedOrigins)
	app.WebServer = webserver.NewServer(webserver.Options{
		Addr:           app.Config.Addr,
		RunRateLimit:   app.Config.RunRateLimit,
		AllowedOrigins: app.Config.AllowedOrigins,
	}, app.Compliance, app.Risk, app.AuditService, app.Exporter, app.Hub, app.Locks)

	return nil
}

func (app *Application) initStorage() error {
	if app.Config.DemoMode {
		mem := storage.NewMemoryStorage()
		gen := mock.NewDataGenerator()
		for org, scenario := range demoOrganizations {
			if err := mem.SaveInventory(context.Background(), gen.GenerateScenario(org, scenario)); err != nil {
				return fmt.Errorf("failed to seed demo inventory: %w", err)
			}
		}
		slog.Info("Demo mode active: using seeded in-memory inventory", "organizations", len(demoOrganizations))
		app.Store = mem
		return nil
	}

	store, err := storage.NewSQLiteAdapter(app.Config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	app.Store = store
	return nil
}

// Serve runs the HTTP API and the expiry sweep until ctx is cancelled.
// Evaluation events are pushed to websocket subscribers only while serving.
func (app *Application) Serve(ctx context.Context) error {
	slog.Info("Starting reconrisk server...")

	app.Compliance.SetNotifier(app.Hub)
	app.Risk.SetNotifier(app.Hub)

	go app.runExpiryLoop(ctx, expiryInterval)

	return app.WebServer.Run(ctx)
}

func (app *Application) runExpiryLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if n, err := app.Compliance.ExpireStale(ctx, time.Now()); err != nil {
			slog.Error("report expiry sweep failed", "error", err)
		} else if n > 0 {
			slog.Info("expired stale reports", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Close releases storage resources.
func (app *Application) Close() error {
	slog.Debug("Cleaning up resources...")
	if app.Store != nil {
		return app.Store.Close()
	}
	return nil
}
