package connectivity

import (
	"sync"
	"testing"
)

func TestMonitor_StartsOnline(t *testing.T) {
	monitor := NewMonitor("", 0)
	if !monitor.IsOnline() {
		t.Fatal("monitor should start online")
	}
}

func TestMonitor_TransitionsNotifySubscribers(t *testing.T) {
	monitor := NewMonitor("", 0)

	var mu sync.Mutex
	var transitions []bool
	unsubscribe := monitor.Subscribe(func(online bool) {
		mu.Lock()
		transitions = append(transitions, online)
		mu.Unlock()
	})

	monitor.SetOnline(false)
	monitor.SetOnline(false) // no-op, state unchanged
	monitor.SetOnline(true)

	mu.Lock()
	got := append([]bool(nil), transitions...)
	mu.Unlock()

	if len(got) != 2 || got[0] != false || got[1] != true {
		t.Errorf("expected [false true], got %v", got)
	}

	unsubscribe()
	monitor.SetOnline(false)

	mu.Lock()
	defer mu.Unlock()
	if len(transitions) != 2 {
		t.Error("unsubscribed listener must not be called")
	}
}
