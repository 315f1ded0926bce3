package status

import (
	"math"
	"time"
)

// ReconnectPolicy controls the exponential backoff between reconnection
// attempts on the live status channel. Unlike a bounded retry loop there
// is no attempt limit: losing the channel degrades to silence, never to
// failure, so reconnection keeps trying for as long as the channel is up.
type ReconnectPolicy struct {
	Base       time.Duration
	Multiplier float64
	Max        time.Duration
}

// DefaultReconnectPolicy returns the standard policy: 1s base delay,
// 2x multiplier, capped at 10s.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		Base:       1 * time.Second,
		Multiplier: 2.0,
		Max:        10 * time.Second,
	}
}

// Delay returns the backoff before reconnect attempt retryCount
// (0-indexed): Base * Multiplier^retryCount, capped at Max. The counter
// resets to zero on every successful connect, so a healthy channel
// always starts over at Base.
func (p ReconnectPolicy) Delay(retryCount int) time.Duration {
	delay := float64(p.Base) * math.Pow(p.Multiplier, float64(retryCount))
	if delay > float64(p.Max) {
		return p.Max
	}
	return time.Duration(delay)
}
