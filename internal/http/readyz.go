package http

import (
	"net/http"
	"time"

	"github.com/serplantas/serplantas/internal/store"
	"github.com/serplantas/serplantas/pkg/httpx"
	"github.com/serplantas/serplantas/pkg/plantsdk"
)

// ReadyzHandler reports whether the service can actually take traffic, which
// today means the database answers a ping.
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &plantsdk.HealthChecks{Database: "ok"}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, plantsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
