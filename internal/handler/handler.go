package handler

import (
	"encoding/json"
	"net/http"

	"diradmin/internal/model"
)

// AuditLog receives one record per sensitive operation. The Postgres audit
// trail implements it; writes are best-effort.
type AuditLog interface {
	LogAudit(entry model.AuditEntry) error
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
