// Package notify defines the user-facing notification capability the
// recovery engine consumes. Rendering lives outside the core; these
// types are the contract.
package notify

import (
	"time"

	"github.com/google/uuid"
)

// Type controls how a notification is presented.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Action is a button attached to a notification.
type Action struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Notification is a user-facing message.
type Notification struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Message    string        `json:"message"`
	Type       Type          `json:"type"`
	Persistent bool          `json:"persistent,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
	Actions    []Action      `json:"actions,omitempty"`
}

// Notifier surfaces messages to the user.
type Notifier interface {
	// Show displays a notification and returns its id.
	Show(n Notification) string

	// Success/Error/Warning/Info are shorthands for Show.
	// Error notifications are persistent by default.
	Success(title, message string) string
	Error(title, message string, actions ...Action) string
	Warning(title, message string) string
	Info(title, message string) string

	// Dismiss removes a notification by id.
	Dismiss(id string)
}

// NewID returns a fresh notification id.
func NewID() string {
	return uuid.New().String()
}
