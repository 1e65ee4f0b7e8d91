package chatclient

import (
	"math"
	"math/rand"
	"time"
)

// Backoff computes exponential reconnect delays, shaped like grpc's backoff.Config.
type Backoff struct {
	BaseDelay  time.Duration
	Multiplier float64
	Jitter     float64 // fraction of the delay randomised in both directions
	MaxDelay   time.Duration
}

var DefaultBackoff = Backoff{
	BaseDelay:  500 * time.Millisecond,
	Multiplier: 1.6,
	Jitter:     0.2,
	MaxDelay:   30 * time.Second,
}

// Delay returns the wait before reconnect attempt number retries (0-based).
func (b Backoff) Delay(retries int) time.Duration {
	if retries <= 0 {
		return b.BaseDelay
	}
	delay := float64(b.BaseDelay) * math.Pow(b.Multiplier, float64(retries))
	if maxDelay := float64(b.MaxDelay); delay > maxDelay {
		delay = maxDelay
	}
	if b.Jitter > 0 {
		delay *= 1 + b.Jitter*(rand.Float64()*2-1)
	}
	if delay < 0 {
		return 0
	}
	return time.Duration(delay)
}
