package domain

// Gate reports whether the index integration can serve requests.
// Checked before any I/O on every operation (fail fast, never retried).
type Gate struct {
	enabled    bool
	configured bool
}

// NewGate creates an availability gate.
func NewGate(enabled, configured bool) Gate {
	return Gate{enabled: enabled, configured: configured}
}

// Check returns ErrServiceDisabled or ErrServiceNotConfigured when the
// integration cannot serve requests, nil otherwise.
func (g Gate) Check() error {
	if !g.enabled {
		return ErrServiceDisabled
	}
	if !g.configured {
		return ErrServiceNotConfigured
	}
	return nil
}
