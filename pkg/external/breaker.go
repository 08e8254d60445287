package external

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/protein-atlas-server/internal/domain"
)

// newBreaker builds the circuit breaker guarding an adapter's live lookup
// path. Static-table hits and fuzzy fallbacks bypass it, so a tripped breaker
// only suppresses network calls while the fallback chain keeps serving.
func newBreaker(name string, logger *logrus.Logger) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A clean "nothing found" is not an upstream fault and must not
		// trip the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrNoData)
		},
	}
	if logger != nil {
		settings.OnStateChange = func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit_breaker": name,
				"from_state":      from.String(),
				"to_state":        to.String(),
			}).Warn("Circuit breaker state changed")
		}
	}
	return gobreaker.NewCircuitBreaker(settings)
}
