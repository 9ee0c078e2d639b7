package domain

// RecoveryResult is the outcome of a recovery attempt.
type RecoveryResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	FallbackUsed bool   `json:"fallback_used,omitempty"`
	Data         any    `json:"data,omitempty"`
}

// HealthState is the derived classification of a service's recent
// reliability. It is computed from attempt counters and in-flight
// retries, never stored directly.
type HealthState string

const (
	HealthHealthy    HealthState = "healthy"
	HealthDegraded   HealthState = "degraded"
	HealthRecovering HealthState = "recovering"
	HealthFailed     HealthState = "failed"
)

// Preferences controls how aggressively the engine recovers.
type Preferences struct {
	AutoRetry                 bool `yaml:"auto_retry"`
	MaxRetries                int  `yaml:"max_retries"`
	UseAlternativeServices    bool `yaml:"use_alternative_services"`
	EnableOfflineMode         bool `yaml:"enable_offline_mode"`
	ShowRecoveryNotifications bool `yaml:"show_recovery_notifications"`
}

// DefaultPreferences returns the stock recovery preferences.
func DefaultPreferences() Preferences {
	return Preferences{
		AutoRetry:                 true,
		MaxRetries:                3,
		UseAlternativeServices:    true,
		EnableOfflineMode:         true,
		ShowRecoveryNotifications: true,
	}
}

// PreferencesPatch is a partial update; nil fields keep their previous
// value.
type PreferencesPatch struct {
	AutoRetry                 *bool
	MaxRetries                *int
	UseAlternativeServices    *bool
	EnableOfflineMode         *bool
	ShowRecoveryNotifications *bool
}

// Apply merges the patch into p and returns the result.
func (p Preferences) Apply(patch PreferencesPatch) Preferences {
	if patch.AutoRetry != nil {
		p.AutoRetry = *patch.AutoRetry
	}
	if patch.MaxRetries != nil {
		p.MaxRetries = *patch.MaxRetries
	}
	if patch.UseAlternativeServices != nil {
		p.UseAlternativeServices = *patch.UseAlternativeServices
	}
	if patch.EnableOfflineMode != nil {
		p.EnableOfflineMode = *patch.EnableOfflineMode
	}
	if patch.ShowRecoveryNotifications != nil {
		p.ShowRecoveryNotifications = *patch.ShowRecoveryNotifications
	}
	return p
}
