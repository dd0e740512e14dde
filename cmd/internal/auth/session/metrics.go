package session

// Metrics receives auth lifecycle counters. The app layer provides a
// Prometheus-backed implementation; NopMetrics keeps the service usable
// without one.
type Metrics interface {
	LoginAttempt(ok bool)
	RefreshAttempt(ok bool)
	Revocation()
	FailClosed()
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) LoginAttempt(bool)   {}
func (NopMetrics) RefreshAttempt(bool) {}
func (NopMetrics) Revocation()         {}
func (NopMetrics) FailClosed()         {}
