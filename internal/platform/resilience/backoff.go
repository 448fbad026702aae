package resilience

import "time"

// Backoff is a capped exponential retry schedule.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
}

func DefaultBackoff() Backoff {
	return Backoff{Initial: time.Second, Max: 30 * time.Second}
}

func (b Backoff) normalized() Backoff {
	defaults := DefaultBackoff()
	if b.Initial <= 0 {
		b.Initial = defaults.Initial
	}
	if b.Max <= 0 {
		b.Max = defaults.Max
	}
	if b.Max < b.Initial {
		b.Max = b.Initial
	}
	return b
}

// Delay returns min(Initial * 2^(attempt-1), Max) for attempt >= 1.
func (b Backoff) Delay(attempt int) time.Duration {
	b = b.normalized()
	if attempt < 1 {
		attempt = 1
	}

	delay := b.Initial
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= b.Max {
			return b.Max
		}
	}
	if delay > b.Max {
		return b.Max
	}
	return delay
}
