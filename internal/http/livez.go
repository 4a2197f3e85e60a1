package http

import (
	"net/http"
	"time"

	"github.com/serplantas/serplantas/pkg/httpx"
	"github.com/serplantas/serplantas/pkg/plantsdk"
)

// LivezHandler always answers 200 while the process is up.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, plantsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
