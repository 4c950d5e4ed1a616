package api

import (
	"io"
	"net/http"
	"net/url"
)

// The gateway fronts a downstream sensor/monitoring API. These handlers
// are a verbatim pass-through: the upstream response body and content
// type stream back unmodified, and no sensor data is parsed or stored
// on this side.

// upstreamDataPath is the single data endpoint the downstream API exposes.
const upstreamDataPath = "/api/data"

// handleMonitoring forwards the caller's query to the monitoring API.
func (s *Server) handleMonitoring(w http.ResponseWriter, r *http.Request) {
	s.proxyUpstream(w, r, r.URL.Query())
}

// handleQuerying forwards the caller's query to the querying API.
func (s *Server) handleQuerying(w http.ResponseWriter, r *http.Request) {
	s.proxyUpstream(w, r, r.URL.Query())
}

// defaultSensorRoom is used when /get-sensor-info is called without ?room=.
const defaultSensorRoom = "kitchen"

// handleSensorInfo resolves a room name to the downstream sensor
// identifier and streams that sensor's data back.
func (s *Server) handleSensorInfo(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	if room == "" {
		room = defaultSensorRoom
	}

	query := url.Values{}
	query.Set("sensor_id", "http://homey/example_graph/sensor_mix_"+room)
	s.proxyUpstream(w, r, query)
}

// proxyUpstream issues the upstream GET and streams the response back
// with its original status and content type. Upstream failures surface
// as 502, never as fabricated data.
func (s *Server) proxyUpstream(w http.ResponseWriter, r *http.Request, query url.Values) {
	target := s.upstream.BaseURL + upstreamDataPath
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("upstream request failed", "url", target, "error", err)
		writeError(w, http.StatusBadGateway, ErrCodeUpstream, "upstream sensor API unavailable")
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		s.logger.Warn("streaming upstream response failed", "url", target, "error", err)
	}
}
