// Package health provides system health monitoring and status reporting.
package health

import "github.com/vietddude/toolguard/internal/core/domain"

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// ServiceReport contains health details for one embedded service.
type ServiceReport struct {
	ServiceID string             `json:"service_id"`
	State     domain.HealthState `json:"state"`
	Errors    int                `json:"errors"`
}

// Report contains the full system health report.
type Report struct {
	SystemStatus      SystemStatus             `json:"system_status"`
	Services          map[string]ServiceReport `json:"services"`
	IsOnline          bool                     `json:"is_online"`
	PendingOperations int                      `json:"pending_operations"`
}
