package nodeview

import "encoding/json"

const metricsKey = "rolling"

// Metrics is a node's rolling performance snapshot (spec §4.9), grounded
// on the original node's NodeMetrics dataclass.
type Metrics struct {
	UptimePercentage      float64 `json:"uptime_percentage"`
	AverageResponseTimeMs float64 `json:"average_response_time_ms"`
	TotalBytesServed      int64   `json:"total_bytes_served"`
	TotalRequestsServed   int64   `json:"total_requests_served"`
	StorageUtilization    float64 `json:"storage_utilization"`
	LastUpdated           uint64  `json:"last_updated"`
}

func (s *store) getMetrics() (Metrics, error) {
	raw, ok, err := s.get(bucketMetrics, metricsKey)
	if err != nil || !ok {
		return Metrics{}, err
	}
	var m Metrics
	if err := json.Unmarshal(raw, &m); err != nil {
		return Metrics{}, err
	}
	return m, nil
}

func (s *store) putMetrics(m Metrics) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.put(bucketMetrics, metricsKey, raw)
}

// recordRequestServed folds a single request's size and latency into the
// running averages (simple cumulative mean over total_requests_served).
func (m *Metrics) recordRequestServed(bytesServed int64, responseTimeMs float64, now uint64) {
	prevCount := m.TotalRequestsServed
	m.TotalRequestsServed++
	m.TotalBytesServed += bytesServed
	m.AverageResponseTimeMs = (m.AverageResponseTimeMs*float64(prevCount) + responseTimeMs) / float64(m.TotalRequestsServed)
	m.LastUpdated = now
}
