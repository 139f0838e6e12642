package handlers

import (
	"net/http"
	"strconv"

	"github.com/lcalzada-xor/reconrisk/internal/core/ports"
	"github.com/lcalzada-xor/reconrisk/internal/core/services/audit"
)

// maxAuditLimit caps ?limit= on the audit endpoint.
const maxAuditLimit = 1000

// AuditHandler handles audit logging operations
type AuditHandler struct {
	Service ports.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service ports.AuditService) *AuditHandler {
	return &AuditHandler{
		Service: service,
	}
}

// HandleGetLogs returns audit logs, newest first
func (h *AuditHandler) HandleGetLogs(w http.ResponseWriter, r *http.Request) {
	limit := audit.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxAuditLimit)
	}

	logs, err := h.Service.GetLogs(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"logs": logs,
	})
}
