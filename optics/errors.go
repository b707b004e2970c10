package optics

import (
	"fmt"
	"math"
)

// ConfigurationError reports a reconstruction parameter that cannot describe
// a physical sampling grid or propagation (non-positive pitch or wavelength,
// empty or ragged image, ...).
type ConfigurationError struct {
	Param  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

// RequirePositive returns a ConfigurationError unless v is finite and > 0.
func RequirePositive(param string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ConfigurationError{Param: param, Reason: fmt.Sprintf("%v is not finite", v)}
	}
	if v <= 0 {
		return &ConfigurationError{Param: param, Reason: fmt.Sprintf("%g must be > 0", v)}
	}
	return nil
}
