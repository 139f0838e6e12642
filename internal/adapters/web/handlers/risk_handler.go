package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
	"github.com/lcalzada-xor/reconrisk/internal/core/ports"
	"github.com/lcalzada-xor/reconrisk/internal/core/services/batch"
)

// RiskHandler handles vulnerability prioritization
type RiskHandler struct {
	Service  ports.RiskService
	Exporter ports.ReportExporter
	Locks    *batch.KeyedLocker
}

// NewRiskHandler creates a new RiskHandler
func NewRiskHandler(service ports.RiskService, exporter ports.ReportExporter, locks *batch.KeyedLocker) *RiskHandler {
	if locks == nil {
		locks = batch.NewKeyedLocker()
	}
	return &RiskHandler{
		Service:  service,
		Exporter: exporter,
		Locks:    locks,
	}
}

// HandleRun recomputes the ranking of an organization
func (h *RiskHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	org := mux.Vars(r)["org"]

	unlock, err := h.Locks.Lock(r.Context(), batch.RiskKey(org))
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer unlock()

	ranking, err := h.Service.PrioritizeVulnerabilities(r.Context(), org)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeRanking(w, org, ranking)
}

// HandleList returns the ranking stored by the last run
func (h *RiskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	org := mux.Vars(r)["org"]

	ranking, err := h.Service.ListPrioritizations(r.Context(), org)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeRanking(w, org, ranking)
}

// HandleExportPDF downloads the stored ranking as PDF
func (h *RiskHandler) HandleExportPDF(w http.ResponseWriter, r *http.Request) {
	org := mux.Vars(r)["org"]

	ranking, err := h.Service.ListPrioritizations(r.Context(), org)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, err := h.Exporter.ExportRiskRanking(org, ranking)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePDF(w, fmt.Sprintf("risk_%s_%s.pdf", slug(org), time.Now().Format("20060102")), data)
}

func writeRanking(w http.ResponseWriter, org string, ranking []domain.RiskPrioritization) {
	if ranking == nil {
		ranking = []domain.RiskPrioritization{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"organization": org,
		"count":        len(ranking),
		"ranking":      ranking,
	})
}
