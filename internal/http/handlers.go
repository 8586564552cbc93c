package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// userID resolves the request's user scope, writing a 400 when it is malformed.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := resolveUserID(r, s.defaultUserID)
	if err != nil {
		BadRequestError(r.Context(), "X-User-ID must be a UUID").Write(w)
		return "", false
	}
	return id, true
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports not_ready when the backing store does not answer.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{}

	if s.ready == nil {
		checks["store"] = "ok"
	} else if err := s.ready(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", "error", err)
		checks["store"] = "failed"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	if s.overviewCache != nil {
		checks["overview_cache_entries"] = s.overviewCache.Size()
	}
	checks["rate_limit_clients"] = s.rateLimiter.ActiveClients()

	NewJSONResponse().Status(code).Data(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.traceMiddleware.GetMetrics()
	limitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()
	cacheEntries := 0
	if s.overviewCache != nil {
		cacheEntries = s.overviewCache.Size()
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("record_writes_total", "counter", "Successful account, bill and income writes", atomic.LoadInt64(&s.appMetrics.writes))
	metric("overview_cache_hits_total", "counter", "Overview cache hits", atomic.LoadInt64(&s.appMetrics.cacheHits))
	metric("overview_cache_misses_total", "counter", "Overview cache misses", atomic.LoadInt64(&s.appMetrics.cacheMisses))
	metric("overview_cache_entries", "gauge", "Cached overviews", cacheEntries)
	metric("rate_limit_hits_total", "counter", "Requests rejected by the rate limiter", limitMetrics.TotalHits)
	metric("suspicious_requests_total", "counter", "Requests flagged as probes", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "gauge", "Process uptime in seconds", int64(time.Since(s.appMetrics.uptime).Seconds()))
}
