package plugin

import "time"

// Observer receives load and invocation outcomes, typically for metrics.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveLoad(engine string, err error)
	ObserveInvoke(engine string, elapsed time.Duration, actions int, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveLoad(string, error) {}

func (nopObserver) ObserveInvoke(string, time.Duration, int, error) {}
