package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Checker reports whether one backing service is reachable.
type Checker func(ctx context.Context) error

// NewRouter serves liveness, readiness and Prometheus metrics. Every named
// check must pass for /ready to answer 200.
func NewRouter(metricsPath string, checks map[string]Checker) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	}).Methods("GET")

	r.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		failed := map[string]string{}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", failed)
			return
		}
		writeStatus(w, http.StatusOK, "ready", nil)
	}).Methods("GET")

	r.Handle(metricsPath, promhttp.Handler()).Methods("GET")
	return r
}

func writeStatus(w http.ResponseWriter, code int, status string, failed map[string]string) {
	body := map[string]interface{}{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if len(failed) > 0 {
		body["errors"] = failed
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
