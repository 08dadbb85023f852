// health.go — liveness probe.
package handlers

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Model     string `json:"model"`
	Sessions  int    `json:"sessions"`
}

// Health возвращает 200, пока процесс жив.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Model:     h.comps.Config.Models.DefaultNaming,
		Sessions:  h.sessions.Len(),
	})
}
