package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Jobs (resolved job-state queries)
	mux.HandleFunc("/api/jobs", s.app.JobsHandler.ListJobsHandler)
	mux.HandleFunc("/api/jobs/", s.app.JobsHandler.GetJobHandler) // GET /{id}

	// API routes - Metrics write-back (admin)
	mux.HandleFunc("/api/writeback/run", s.app.WritebackHandler.RunHandler)

	// API routes - System
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	return mux
}
