// Package connectivity tracks whether the host can reach the network
// and notifies subscribers on transitions.
package connectivity

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Listener is invoked on every online/offline transition.
type Listener func(online bool)

// Monitor holds the current connectivity state. State changes come from
// an external signal (SetOnline) or from the optional HTTP probe loop.
type Monitor struct {
	mu        sync.RWMutex
	online    bool
	listeners map[int]Listener
	nextID    int

	probeURL      string
	probeInterval time.Duration
	client        *http.Client
}

// NewMonitor creates a monitor that starts in the online state.
func NewMonitor(probeURL string, probeInterval time.Duration) *Monitor {
	if probeInterval <= 0 {
		probeInterval = 30 * time.Second
	}
	return &Monitor{
		online:        true,
		listeners:     make(map[int]Listener),
		probeURL:      probeURL,
		probeInterval: probeInterval,
		client:        &http.Client{Timeout: 5 * time.Second},
	}
}

// IsOnline reports the current connectivity state.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// SetOnline records a connectivity transition and fans it out to
// subscribers. No-op when the state is unchanged.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	listeners := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	slog.Info("Connectivity changed", "online", online)
	for _, fn := range listeners {
		fn(online)
	}
}

// Subscribe registers a transition listener and returns an unsubscribe
// function.
func (m *Monitor) Subscribe(fn Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Start runs the HTTP probe loop until the context is cancelled.
// Without a probe URL the monitor relies purely on SetOnline signals.
func (m *Monitor) Start(ctx context.Context) {
	if m.probeURL == "" {
		return
	}

	ticker := time.NewTicker(m.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SetOnline(m.probe(ctx))
		}
	}
}

func (m *Monitor) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.probeURL, nil)
	if err != nil {
		return false
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}
