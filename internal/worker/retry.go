package worker

import "time"

// Backoff defaults for the export queue. They apply wherever a policy
// field is left at its zero value.
const (
	defaultMaxRetries    = 5
	defaultInitialDelay  = 2 * time.Second
	defaultMaxDelay      = time.Minute
	defaultBackoffFactor = 2.0
)

// RetryPolicy schedules retries for failed export tasks: the delay grows
// by BackoffFactor per attempt and is capped at MaxDelay.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// withDefaults fills zero-value fields with the export queue defaults, so
// callers can configure only what they care about.
func (r RetryPolicy) withDefaults() RetryPolicy {
	if r.MaxRetries <= 0 {
		r.MaxRetries = defaultMaxRetries
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = defaultInitialDelay
	}
	if r.MaxDelay <= 0 {
		r.MaxDelay = defaultMaxDelay
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = defaultBackoffFactor
	}
	return r
}

// NextDelay returns how long to wait before the given attempt. Attempts
// are 1-based; anything below that is treated as the first.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	p := r.withDefaults()

	delay := p.InitialDelay
	if delay >= p.MaxDelay {
		return p.MaxDelay
	}
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * p.BackoffFactor)
		if delay >= p.MaxDelay || delay <= 0 {
			return p.MaxDelay
		}
	}
	return delay
}
