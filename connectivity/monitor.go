package connectivity

import (
	"context"
	"log"
	"net"
	"net/url"
	"sync"
	"time"
)

// Prober reports whether the network is currently reachable
type Prober func(ctx context.Context) bool

// Listener is notified on every connectivity transition with the new state
type Listener func(connected bool)

// Monitor maintains the current connectivity state and notifies subscribers
// on transitions (edge-triggered, not on every probe).
type Monitor interface {
	// IsConnected returns the current connectivity state
	IsConnected() bool

	// Subscribe registers a listener for transitions and returns an
	// unsubscribe function. No notifications are delivered after the
	// unsubscribe function returns.
	Subscribe(listener Listener) (unsubscribe func())

	// Start begins the probe loop
	Start()

	// Stop ends the probe loop and drops all listeners
	Stop()
}

// ProbeMonitor implements Monitor by polling a Prober at a fixed interval
type ProbeMonitor struct {
	prober   Prober
	interval time.Duration

	mu        sync.Mutex
	connected bool
	listeners map[int]Listener
	nextID    int
	started   bool

	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewProbeMonitor creates a monitor polling the given prober. The initial
// state is optimistically connected until the first probe says otherwise.
func NewProbeMonitor(prober Prober, interval time.Duration) *ProbeMonitor {
	return &ProbeMonitor{
		prober:    prober,
		interval:  interval,
		connected: true,
		listeners: make(map[int]Listener),
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

// IsConnected returns the current connectivity state
func (m *ProbeMonitor) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Subscribe registers a listener for connectivity transitions
func (m *ProbeMonitor) Subscribe(listener Listener) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = listener
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Start begins the probe loop
func (m *ProbeMonitor) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	go m.probeLoop()
}

// Stop ends the probe loop and drops all listeners
func (m *ProbeMonitor) Stop() {
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()

	m.stopOnce.Do(func() {
		close(m.stopChan)
	})

	if started {
		<-m.doneChan
	}

	m.mu.Lock()
	m.listeners = make(map[int]Listener)
	m.mu.Unlock()
}

func (m *ProbeMonitor) probeLoop() {
	defer close(m.doneChan)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.probe()
		case <-m.stopChan:
			return
		}
	}
}

// probe runs one reachability check and notifies listeners on a transition
func (m *ProbeMonitor) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), m.interval)
	defer cancel()

	connected := m.prober(ctx)

	m.mu.Lock()
	if connected == m.connected {
		m.mu.Unlock()
		return
	}
	m.connected = connected

	// Snapshot listeners so callbacks run outside the lock
	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.Unlock()

	if connected {
		log.Println("Connectivity restored")
	} else {
		log.Println("Connectivity lost")
	}

	for _, listener := range listeners {
		listener(connected)
	}
}

// NewTCPProber returns a prober that dials the host of the given server URL.
// A URL without an explicit port probes 443 for https and 80 otherwise.
func NewTCPProber(serverURL string, timeout time.Duration) Prober {
	address := probeAddress(serverURL)

	return func(ctx context.Context) bool {
		dialer := net.Dialer{Timeout: timeout}
		conn, err := dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}
}

func probeAddress(serverURL string) string {
	parsed, err := url.Parse(serverURL)
	if err != nil || parsed.Host == "" {
		return serverURL
	}

	host := parsed.Host
	if parsed.Port() == "" {
		port := "80"
		if parsed.Scheme == "https" {
			port = "443"
		}
		host = net.JoinHostPort(parsed.Hostname(), port)
	}
	return host
}
