package status

import (
	"testing"
	"time"
)

func TestReconnectDelaySequence(t *testing.T) {
	policy := DefaultReconnectPolicy()

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		10 * time.Second,
		10 * time.Second,
		10 * time.Second,
	}
	for retry, expected := range want {
		if got := policy.Delay(retry); got != expected {
			t.Errorf("retry %d: expected %v, got %v", retry, expected, got)
		}
	}
}

func TestReconnectDelayCap(t *testing.T) {
	policy := ReconnectPolicy{
		Base:       1 * time.Second,
		Multiplier: 10.0,
		Max:        30 * time.Second,
	}
	if got := policy.Delay(8); got != 30*time.Second {
		t.Errorf("expected cap at 30s, got %v", got)
	}
}

func TestReconnectDelayStartsAtBase(t *testing.T) {
	policy := ReconnectPolicy{
		Base:       250 * time.Millisecond,
		Multiplier: 2.0,
		Max:        5 * time.Second,
	}
	if got := policy.Delay(0); got != 250*time.Millisecond {
		t.Errorf("expected base delay, got %v", got)
	}
}
