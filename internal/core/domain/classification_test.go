package domain

import "testing"

func TestClassifyCriticality(t *testing.T) {
	tests := []struct {
		score float64
		want  CriticalityLevel
	}{
		{10, CriticalityVeryHigh},
		{8.0, CriticalityVeryHigh},
		{7.999, CriticalityHigh},
		{6.0, CriticalityHigh},
		{5.99, CriticalityMedium},
		{4.0, CriticalityMedium},
		{3.999, CriticalityLow},
		{2.0, CriticalityLow},
		{1.999, CriticalityVeryLow},
		{0, CriticalityVeryLow},
	}

	for _, tt := range tests {
		if got := ClassifyCriticality(tt.score); got != tt.want {
			t.Errorf("ClassifyCriticality(%v) = %s; want %s", tt.score, got, tt.want)
		}
	}
}

func TestClassifyPriority(t *testing.T) {
	tests := []struct {
		score float64
		want  PriorityLevel
	}{
		{10, PriorityCritical},
		{8.0, PriorityCritical},
		{7.999, PriorityHigh},
		{20.0 / 3, PriorityHigh},
		{6.0, PriorityHigh},
		{4.0, PriorityMedium},
		{3.999, PriorityLow},
		{2.0, PriorityLow},
		{1.999, PriorityInfo},
		{0, PriorityInfo},
	}

	for _, tt := range tests {
		if got := ClassifyPriority(tt.score); got != tt.want {
			t.Errorf("ClassifyPriority(%v) = %s; want %s", tt.score, got, tt.want)
		}
	}
}

func TestSeverityNormalize(t *testing.T) {
	tests := []struct {
		in   Severity
		want Severity
	}{
		{-3, SeverityInfo},
		{SeverityInfo, SeverityInfo},
		{SeverityHigh, SeverityHigh},
		{MaxSeverity, MaxSeverity},
		{42, MaxSeverity},
	}

	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Severity(%d).Normalize() = %d; want %d", tt.in, got, tt.want)
		}
	}
}
