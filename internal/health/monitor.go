package health

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/toolguard/internal/core/domain"
	"github.com/vietddude/toolguard/internal/offline"
	"github.com/vietddude/toolguard/internal/recovery"
)

// pendingCritical is the queue depth beyond which the system is
// considered critical while offline.
const pendingCritical = 50

// Monitor aggregates health status from the engine and offline queue.
type Monitor struct {
	engine     *recovery.Engine
	queue      *offline.Queue
	lastCheck  time.Time
	lastReport *Report
	mu         sync.Mutex
}

// NewMonitor creates a new health monitor.
func NewMonitor(engine *recovery.Engine, queue *offline.Queue) *Monitor {
	return &Monitor{engine: engine, queue: queue}
}

// Check builds a health report. Results are cached briefly so a busy
// health endpoint doesn't hammer the stores.
func (m *Monitor) Check(ctx context.Context) *Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastCheck) < 10*time.Second && m.lastReport != nil {
		return m.lastReport
	}

	report := &Report{
		SystemStatus: StatusHealthy,
		Services:     make(map[string]ServiceReport),
		IsOnline:     true,
	}

	for sid, state := range m.engine.ServiceHealth() {
		report.Services[sid] = ServiceReport{
			ServiceID: sid,
			State:     state,
			Errors:    len(m.engine.RecoveryHistory(sid)),
		}

		switch state {
		case domain.HealthFailed:
			report.SystemStatus = StatusCritical
		case domain.HealthDegraded, domain.HealthRecovering:
			if report.SystemStatus == StatusHealthy {
				report.SystemStatus = StatusDegraded
			}
		}
	}

	if m.queue != nil {
		status, err := m.queue.SyncStatus(ctx)
		if err == nil {
			report.IsOnline = status.IsOnline
			report.PendingOperations = status.PendingOperations

			if !status.IsOnline && status.PendingOperations > pendingCritical {
				report.SystemStatus = StatusCritical
			} else if status.PendingOperations > 0 && report.SystemStatus == StatusHealthy {
				report.SystemStatus = StatusDegraded
			}
		}
	}

	m.lastCheck = time.Now()
	m.lastReport = report
	return report
}
