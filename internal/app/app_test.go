package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/reconrisk/internal/config"
	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Addr:               "127.0.0.1:0",
		DBPath:             filepath.Join(t.TempDir(), "data", "reconrisk.db"),
		ReportValidityDays: 30,
		Workers:            2,
		RunTimeout:         time.Minute,
		RunRateLimit:       10,
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Workers = 0

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNew_MissingRulesFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.RulesPath = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNew_SQLite(t *testing.T) {
	cfg := testConfig(t)

	application, err := New(cfg)
	require.NoError(t, err)
	defer application.Close()

	_, err = os.Stat(cfg.DBPath)
	assert.NoError(t, err, "database file should be created with its directory")

	assert.NotNil(t, application.Compliance)
	assert.NotNil(t, application.Risk)
	assert.NotNil(t, application.Runner)
	assert.NotNil(t, application.WebServer)
}

func TestDemoMode_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	cfg.DemoMode = true
	cfg.DBPath = ""

	application, err := New(cfg)
	require.NoError(t, err)
	defer application.Close()

	ctx := context.Background()

	results, err := application.Runner.RunCompliance(ctx, []string{"Globex", "Acme Corp", "globex"}, "SOC2")
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, res := range results {
		require.NoError(t, res.Err)
		assert.Equal(t, domain.FrameworkSOC2, res.Framework)
		assert.NotEmpty(t, res.ReportID)
	}

	report, err := application.Compliance.GetReport(ctx, results[0].ReportID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportDraft, report.Status)

	ranked, err := application.Risk.PrioritizeVulnerabilities(ctx, "Globex")
	require.NoError(t, err)
	assert.NotEmpty(t, ranked, "the vulnerable scenario always carries findings")
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].OverallRiskScore, ranked[i].OverallRiskScore)
	}

	logs, err := application.AuditService.GetLogs(ctx, 50)
	require.NoError(t, err)
	assert.NotEmpty(t, logs)
}

func TestRunExpiryLoop_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.DemoMode = true

	application, err := New(cfg)
	require.NoError(t, err)
	defer application.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		application.runExpiryLoop(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expiry loop did not stop after cancellation")
	}
}
