package probe

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds a single probe, transport and response included.
const DefaultTimeout = 5 * time.Second

// Status classifies the outcome of one reachability probe.
type Status string

const (
	// StatusUp means the service responded with a status code below 500.
	// Redirects and client errors count as up: the service is reachable
	// and answering, which is all a reachability probe measures.
	StatusUp Status = "up"

	// StatusDown means a server error (>= 500) or any transport failure.
	StatusDown Status = "down"

	// StatusUnknown is reserved for service ids absent from the
	// configuration; the prober itself never produces it.
	StatusUnknown Status = "unknown"
)

// HealthResult is the outcome of a single probe. LatencyMs is nil when
// the request never completed (DNS failure, refused connection, timeout).
type HealthResult struct {
	Status    Status `json:"status"`
	LatencyMs *int64 `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Probe performs one blocking HTTP GET against url with the default
// timeout. No retries, no backoff.
func Probe(url string) HealthResult {
	return ProbeWithTimeout(url, DefaultTimeout)
}

// ProbeWithTimeout performs one blocking HTTP GET against url, measuring
// latency from just before the request to response completion. All
// failures classify into the result; it never returns an error.
func ProbeWithTimeout(url string, timeout time.Duration) HealthResult {
	client := &http.Client{
		Timeout: timeout,
	}

	start := time.Now()
	resp, err := client.Get(url)
	if err != nil {
		return HealthResult{Status: StatusDown}
	}
	defer resp.Body.Close()

	latencyMs := time.Since(start).Milliseconds()

	if resp.StatusCode < 500 {
		return HealthResult{Status: StatusUp, LatencyMs: &latencyMs}
	}
	return HealthResult{Status: StatusDown, LatencyMs: &latencyMs}
}
