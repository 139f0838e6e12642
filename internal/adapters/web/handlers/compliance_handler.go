package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
	"github.com/lcalzada-xor/reconrisk/internal/core/ports"
	"github.com/lcalzada-xor/reconrisk/internal/core/services/batch"
)

// ComplianceHandler handles compliance runs and the report lifecycle
type ComplianceHandler struct {
	Service  ports.ComplianceService
	Exporter ports.ReportExporter
	Locks    *batch.KeyedLocker
}

// NewComplianceHandler creates a new ComplianceHandler
func NewComplianceHandler(service ports.ComplianceService, exporter ports.ReportExporter, locks *batch.KeyedLocker) *ComplianceHandler {
	if locks == nil {
		locks = batch.NewKeyedLocker()
	}
	return &ComplianceHandler{
		Service:  service,
		Exporter: exporter,
		Locks:    locks,
	}
}

// RunResponse is returned by a compliance run.
type RunResponse struct {
	Report   *domain.ComplianceReport `json:"report"`
	Passed   int                      `json:"passed"`
	Warnings int                      `json:"warnings"`
	Failed   int                      `json:"failed"`
}

// HandleRun evaluates a framework for an organization
func (h *ComplianceHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	org := vars["org"]

	fw, err := domain.ParseFramework(vars["framework"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	unlock, err := h.Locks.Lock(r.Context(), batch.ComplianceKey(org, fw))
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer unlock()

	report, findings, err := h.Service.RunComplianceCheck(r.Context(), org, string(fw))
	if err != nil {
		writeError(w, r, err)
		return
	}

	passed, warnings, failed := findings.Counts()
	writeJSON(w, http.StatusOK, RunResponse{
		Report:   report,
		Passed:   passed,
		Warnings: warnings,
		Failed:   failed,
	})
}

// HandleListReports lists reports, optionally filtered by ?organization=
func (h *ComplianceHandler) HandleListReports(w http.ResponseWriter, r *http.Request) {
	org := strings.TrimSpace(r.URL.Query().Get("organization"))

	reports, err := h.Service.ListReports(r.Context(), org)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if reports == nil {
		reports = []domain.ComplianceReport{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

// HandleGetReport returns a single report
func (h *ComplianceHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.GetReport(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleApprove approves a draft report
func (h *ComplianceHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Approve(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type planRequest struct {
	RemediationPlan string `json:"remediation_plan"`
}

// HandleUpdatePlan replaces the remediation plan of a report
func (h *ComplianceHandler) HandleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	report, err := h.Service.UpdateRemediationPlan(r.Context(), mux.Vars(r)["id"], req.RemediationPlan)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleExportPDF downloads a report as PDF
func (h *ComplianceHandler) HandleExportPDF(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.GetReport(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, err := h.Exporter.ExportComplianceReport(report)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("%s_%s_%s.pdf", report.Framework, slug(report.Organization), report.GeneratedAt.Format("20060102"))
	writePDF(w, filename, data)
}

// slug turns an organization name into a filename fragment.
func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ', r == '.':
			return '_'
		default:
			return -1
		}
	}, s)
}
