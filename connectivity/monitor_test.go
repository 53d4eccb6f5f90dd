package connectivity

import (
	"context"
	"sync"
	"testing"
	"time"
)

// scriptedProber replays a fixed sequence of probe results, repeating the
// last one once the script is exhausted
type scriptedProber struct {
	mu      sync.Mutex
	results []bool
	index   int
}

func (p *scriptedProber) probe(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	result := p.results[p.index]
	if p.index < len(p.results)-1 {
		p.index++
	}
	return result
}

func waitFor(t *testing.T, timeout time.Duration, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("Condition not met before timeout")
}

func TestProbeMonitor_InitiallyConnected(t *testing.T) {
	prober := &scriptedProber{results: []bool{true}}
	monitor := NewProbeMonitor(prober.probe, time.Hour)
	defer monitor.Stop()

	if !monitor.IsConnected() {
		t.Error("Monitor should assume connected before the first probe")
	}
}

func TestProbeMonitor_NotifiesOnTransitionOnly(t *testing.T) {
	// Stays down for several probes, then comes back
	prober := &scriptedProber{results: []bool{false, false, false, true}}
	monitor := NewProbeMonitor(prober.probe, 2*time.Millisecond)

	var mu sync.Mutex
	var events []bool
	monitor.Subscribe(func(connected bool) {
		mu.Lock()
		events = append(events, connected)
		mu.Unlock()
	})

	monitor.Start()
	defer monitor.Stop()

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) >= 2
	})
	monitor.Stop()

	mu.Lock()
	defer mu.Unlock()
	// Exactly one disconnected edge and one connected edge, despite the
	// repeated down probes in between
	if len(events) != 2 || events[0] != false || events[1] != true {
		t.Errorf("Events = %v, want [false true]", events)
	}
	if !monitor.IsConnected() {
		t.Error("Monitor should report connected after recovery")
	}
}

func TestProbeMonitor_UnsubscribeStopsNotifications(t *testing.T) {
	prober := &scriptedProber{results: []bool{false, true, false, true}}
	monitor := NewProbeMonitor(prober.probe, 2*time.Millisecond)

	var mu sync.Mutex
	count := 0
	unsubscribe := monitor.Subscribe(func(connected bool) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	unsubscribe()

	monitor.Start()
	defer monitor.Stop()

	time.Sleep(20 * time.Millisecond)
	monitor.Stop()

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("Unsubscribed listener received %d notifications", count)
	}
}

func TestProbeMonitor_StopIsIdempotent(t *testing.T) {
	prober := &scriptedProber{results: []bool{true}}
	monitor := NewProbeMonitor(prober.probe, time.Millisecond)
	monitor.Start()

	monitor.Stop()
	monitor.Stop() // Must not panic or block
}

func TestProbeAddress(t *testing.T) {
	cases := map[string]string{
		"https://feedback.example.com":      "feedback.example.com:443",
		"http://feedback.example.com":       "feedback.example.com:80",
		"http://localhost:8080":             "localhost:8080",
		"https://feedback.example.com:9443": "feedback.example.com:9443",
	}
	for input, want := range cases {
		if got := probeAddress(input); got != want {
			t.Errorf("probeAddress(%q) = %q, want %q", input, got, want)
		}
	}
}
