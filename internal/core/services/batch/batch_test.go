package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

// MockComplianceService
type MockComplianceService struct {
	mock.Mock
}

func (m *MockComplianceService) RunComplianceCheck(ctx context.Context, org, framework string) (*domain.ComplianceReport, domain.Findings, error) {
	args := m.Called(ctx, org, framework)
	report, _ := args.Get(0).(*domain.ComplianceReport)
	findings, _ := args.Get(1).(domain.Findings)
	return report, findings, args.Error(2)
}

func (m *MockComplianceService) GetReport(ctx context.Context, id string) (*domain.ComplianceReport, error) {
	args := m.Called(ctx, id)
	report, _ := args.Get(0).(*domain.ComplianceReport)
	return report, args.Error(1)
}

func (m *MockComplianceService) ListReports(ctx context.Context, org string) ([]domain.ComplianceReport, error) {
	args := m.Called(ctx, org)
	reports, _ := args.Get(0).([]domain.ComplianceReport)
	return reports, args.Error(1)
}

func (m *MockComplianceService) Approve(ctx context.Context, id string) (*domain.ComplianceReport, error) {
	args := m.Called(ctx, id)
	report, _ := args.Get(0).(*domain.ComplianceReport)
	return report, args.Error(1)
}

func (m *MockComplianceService) UpdateRemediationPlan(ctx context.Context, id, plan string) (*domain.ComplianceReport, error) {
	args := m.Called(ctx, id, plan)
	report, _ := args.Get(0).(*domain.ComplianceReport)
	return report, args.Error(1)
}

func (m *MockComplianceService) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

// slowRisk records peak concurrency across calls.
type slowRisk struct {
	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
	fail     map[string]error
}

func (s *slowRisk) CalculateAssetCriticality(context.Context, domain.Asset) (*domain.AssetCriticality, error) {
	return &domain.AssetCriticality{}, nil
}

func (s *slowRisk) ListPrioritizations(context.Context, string) ([]domain.RiskPrioritization, error) {
	return nil, nil
}

func (s *slowRisk) PrioritizeVulnerabilities(ctx context.Context, org string) ([]domain.RiskPrioritization, error) {
	s.calls.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}

	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err, ok := s.fail[org]; ok {
		return nil, err
	}
	return make([]domain.RiskPrioritization, len(org)), nil
}

func TestKeyedLocker_SerializesSameKey(t *testing.T) {
	l := NewKeyedLocker()

	var active, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "acme|SOC2")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := active.Add(1)
			if n > peak.Load() {
				peak.Store(n)
			}
			time.Sleep(2 * time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak.Load())
	assert.Zero(t, l.Len())
}

func TestKeyedLocker_IndependentKeys(t *testing.T) {
	l := NewKeyedLocker()

	unlockA, err := l.Lock(context.Background(), ComplianceKey("Acme", domain.FrameworkSOC2))
	require.NoError(t, err)
	done := make(chan struct{})
	go func() {
		defer close(done)
		unlock, err := l.Lock(context.Background(), RiskKey("Acme"))
		if assert.NoError(t, err) {
			unlock()
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("different keys must not block each other")
	}

	unlockA()
	unlockA()
	assert.Zero(t, l.Len())
}

func TestKeyedLocker_WaitStopsOnContext(t *testing.T) {
	l := NewKeyedLocker()
	key := RiskKey("Acme")

	unlock, err := l.Lock(context.Background(), key)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = l.Lock(ctx, key)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, l.Len(), "an abandoned wait must not leave a reference behind")

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	_, err = l.Lock(cancelled, RiskKey("Globex"))
	assert.ErrorIs(t, err, context.Canceled)

	unlock()
	assert.Zero(t, l.Len())

	// The key is usable again once released.
	again, err := l.Lock(context.Background(), key)
	require.NoError(t, err)
	again()
}

func TestRunner_BusyKeyHonoursTimeout(t *testing.T) {
	risk := &slowRisk{}
	locks := NewKeyedLocker()
	runner := NewRunner(nil, risk, locks)
	runner.SetTimeout(20 * time.Millisecond)

	unlock, err := locks.Lock(context.Background(), RiskKey("Acme"))
	require.NoError(t, err)
	defer unlock()

	results := runner.RunRisk(context.Background(), []string{"Acme"})
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
	assert.Zero(t, risk.calls.Load())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "acme|SOC2", ComplianceKey(" ACME ", domain.FrameworkSOC2))
	assert.Equal(t, "acme|risk", RiskKey("Acme"))
}

func TestRunner_RunRiskBoundsWorkers(t *testing.T) {
	risk := &slowRisk{delay: 10 * time.Millisecond}
	r := NewRunner(nil, risk, nil)
	r.SetWorkers(2)

	orgs := []string{"acme", "globex", "initech", "umbrella", "hooli", "ACME", " "}
	results := r.RunRisk(context.Background(), orgs)

	require.Len(t, results, 5)
	assert.Equal(t, int32(5), risk.calls.Load())
	assert.LessOrEqual(t, risk.peak.Load(), int32(2))
	assert.Zero(t, Failures(results))

	assert.Equal(t, "acme", results[0].Organization)
	assert.Equal(t, len("acme"), results[0].Prioritized)
	assert.Equal(t, "hooli", results[4].Organization)
}

func TestRunner_RunRiskCollectsFailures(t *testing.T) {
	boom := errors.New("inventory unavailable")
	risk := &slowRisk{fail: map[string]error{"globex": boom}}
	r := NewRunner(nil, risk, nil)

	results := r.RunRisk(context.Background(), []string{"acme", "globex", "initech"})

	require.Len(t, results, 3)
	assert.Equal(t, 1, Failures(results))
	assert.ErrorIs(t, results[1].Err, boom)
	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[2].Err)
}

func TestRunner_Timeout(t *testing.T) {
	risk := &slowRisk{delay: time.Second}
	r := NewRunner(nil, risk, nil)
	r.SetTimeout(5 * time.Millisecond)

	results := r.RunRisk(context.Background(), []string{"acme"})
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
}

func TestRunner_CancelledContext(t *testing.T) {
	risk := &slowRisk{}
	r := NewRunner(nil, risk, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := r.RunRisk(ctx, []string{"acme", "globex"})
	require.Len(t, results, 2)
	assert.Equal(t, 2, Failures(results))
	assert.Zero(t, risk.calls.Load())
}

func TestRunner_RunCompliance(t *testing.T) {
	svc := new(MockComplianceService)
	findings := domain.NewFindings()
	findings.Failed = append(findings.Failed, domain.Finding{Check: "Privacy Policy"})
	findings.Warnings = append(findings.Warnings, domain.Finding{Check: "Cookie Consent"})

	svc.On("RunComplianceCheck", mock.Anything, "acme", "GDPR").
		Return(&domain.ComplianceReport{ID: "r-1"}, findings, nil)
	svc.On("RunComplianceCheck", mock.Anything, "globex", "GDPR").
		Return(nil, domain.Findings{}, errors.New("locked"))

	r := NewRunner(svc, nil, nil)
	results, err := r.RunCompliance(context.Background(), []string{"acme", "globex"}, "GDPR")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "r-1", results[0].ReportID)
	assert.Equal(t, domain.FrameworkGDPR, results[0].Framework)
	assert.Equal(t, 1, results[0].Failed)
	assert.Equal(t, 1, results[0].Warnings)
	assert.Error(t, results[1].Err)
	svc.AssertExpectations(t)
}

func TestRunner_RunComplianceRejectsFramework(t *testing.T) {
	svc := new(MockComplianceService)
	r := NewRunner(svc, nil, nil)

	_, err := r.RunCompliance(context.Background(), []string{"acme"}, "HIPAA")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFramework)
	svc.AssertNotCalled(t, "RunComplianceCheck", mock.Anything, mock.Anything, mock.Anything)
}
