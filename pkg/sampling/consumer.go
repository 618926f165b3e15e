package sampling

import "SystemMonitor/pkg/metrics"

// Consumer receives every snapshot the sampler produces. Consume runs on the
// sampling goroutine, so a slow consumer delays the next tick.
type Consumer interface {
	Consume(s metrics.Snapshot) error
}

// ConsumerFunc adapts a plain function to Consumer.
type ConsumerFunc func(s metrics.Snapshot) error

func (f ConsumerFunc) Consume(s metrics.Snapshot) error { return f(s) }

// Registration identifies one Register call. Registering the same consumer
// twice yields two distinct registrations.
type Registration struct {
	id uint64
}

// Valid reports whether r came from Register.
func (r Registration) Valid() bool { return r.id != 0 }

type registered struct {
	id       uint64
	consumer Consumer
}
