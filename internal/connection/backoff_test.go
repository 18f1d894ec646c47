package connection

import (
	"testing"
	"time"
)

func TestBackoffDelayDoubling(t *testing.T) {
	initial := 1000 * time.Millisecond
	max := 30000 * time.Millisecond

	// 1s, 2s, 4s, 8s, 16s, 然后封顶30s
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1000 * time.Millisecond},
		{2, 2000 * time.Millisecond},
		{3, 4000 * time.Millisecond},
		{4, 8000 * time.Millisecond},
		{5, 16000 * time.Millisecond},
		{6, 30000 * time.Millisecond},
		{7, 30000 * time.Millisecond},
		{60, 30000 * time.Millisecond},
	}

	for _, tc := range cases {
		got := BackoffDelay(tc.attempt, initial, max)
		if got != tc.want {
			t.Errorf("BackoffDelay(%d): expected %v, got %v", tc.attempt, tc.want, got)
		}
	}
}

func TestBackoffDelayClampsAttempt(t *testing.T) {
	initial := 500 * time.Millisecond
	max := 10 * time.Second

	// attempt < 1 按1处理
	if got := BackoffDelay(0, initial, max); got != initial {
		t.Errorf("Expected %v for attempt 0, got %v", initial, got)
	}
	if got := BackoffDelay(-3, initial, max); got != initial {
		t.Errorf("Expected %v for negative attempt, got %v", initial, got)
	}
}

func TestBackoffDelayInitialAboveMax(t *testing.T) {
	// initial大于max时直接取max
	if got := BackoffDelay(1, time.Minute, time.Second); got != time.Second {
		t.Errorf("Expected max, got %v", got)
	}
}

func TestCanTransition(t *testing.T) {
	valid := []struct{ from, to State }{
		{StateDisconnected, StateConnecting},
		{StateConnecting, StateConnected},
		{StateConnecting, StateReconnecting},
		{StateConnected, StateReconnecting},
		{StateReconnecting, StateConnecting},
		{StateReconnecting, StateFailed},
		{StateFailed, StateConnecting},
		{StateConnected, StateDisconnected},
		{StateFailed, StateDisconnected},
	}
	for _, tc := range valid {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("Expected %s -> %s to be valid", tc.from, tc.to)
		}
	}

	invalid := []struct{ from, to State }{
		{StateDisconnected, StateConnected},
		{StateDisconnected, StateReconnecting},
		{StateConnected, StateConnecting},
		{StateFailed, StateConnected},
		{StateFailed, StateReconnecting},
	}
	for _, tc := range invalid {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("Expected %s -> %s to be invalid", tc.from, tc.to)
		}
	}
}
