package health

import (
	"encoding/json"
	"net/http"
)

// HandleHealth answers with the aggregated status only. A critical system
// returns 503 so load balancers take the instance out.
func (m *Monitor) HandleHealth(w http.ResponseWriter, r *http.Request) {
	report := m.CheckHealth(r.Context())

	response := map[string]string{"status": string(report.SystemStatus)}
	w.Header().Set("Content-Type", "application/json")

	if report.SystemStatus == StatusCritical {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	_ = json.NewEncoder(w).Encode(response)
}

// HandleDetailed answers with the per-component report.
func (m *Monitor) HandleDetailed(w http.ResponseWriter, r *http.Request) {
	report := m.CheckHealth(r.Context())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}
