// internal/handlers/api.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// HealthHandler answers liveness probes.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	s.Recorder.Record(getClientIP(r), "health_check", "/health", nil)
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// LogsHandler returns the most recent recorded actions.
func (s *Server) LogsHandler(w http.ResponseWriter, r *http.Request) {
	s.Recorder.Record(getClientIP(r), "view_logs", "/logs", nil)
	writeJSON(w, map[string]interface{}{
		"logs":  s.Recorder.Recent(50),
		"total": s.Recorder.Len(),
	})
}

// LogsByIPHandler returns recent actions for a single client IP, taken from
// the path suffix of /logs/ip/{ip}.
func (s *Server) LogsByIPHandler(w http.ResponseWriter, r *http.Request) {
	ip := strings.TrimPrefix(r.URL.Path, "/logs/ip/")
	if ip == "" {
		http.Error(w, "Missing ip in path (/logs/ip/{ip})", http.StatusBadRequest)
		return
	}
	s.Recorder.Record(getClientIP(r), "view_logs_by_ip", r.URL.Path, map[string]interface{}{"target_ip": ip})
	writeJSON(w, map[string]interface{}{
		"logs": s.Recorder.ByIP(ip, 25),
		"ip":   ip,
	})
}

// RoomsHandler lists the active rooms for the room browser.
func (s *Server) RoomsHandler(w http.ResponseWriter, r *http.Request) {
	s.Recorder.Record(getClientIP(r), "browse_rooms", "/api/rooms", nil)
	writeJSON(w, map[string]interface{}{
		"rooms": s.Rooms.Summaries(),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
