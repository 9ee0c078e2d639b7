package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ServiceErrorsTotal tracks faults reported per service and type
	ServiceErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolguard_service_errors_total",
			Help: "Total number of service errors handled",
		},
		[]string{"service", "type"},
	)

	// RecoveriesTotal tracks recovery attempts per strategy and outcome
	RecoveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolguard_recoveries_total",
			Help: "Total number of recovery strategy executions",
		},
		[]string{"strategy", "outcome"},
	)

	// RecoveryExhaustedTotal tracks errors no strategy could recover
	RecoveryExhaustedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolguard_recovery_exhausted_total",
			Help: "Total number of errors that exhausted all strategies",
		},
		[]string{"service"},
	)

	// CheckpointsCreated tracks checkpoint creations per workspace
	CheckpointsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolguard_checkpoints_created_total",
			Help: "Total number of checkpoints created",
		},
		[]string{"workspace"},
	)

	// CheckpointRestores tracks restore attempts and their outcome
	CheckpointRestores = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolguard_checkpoint_restores_total",
			Help: "Total number of checkpoint restore attempts",
		},
		[]string{"outcome"},
	)

	// OfflineQueueDepth tracks pending operations awaiting replay
	OfflineQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "toolguard_offline_queue_depth",
			Help: "Number of pending operations in the offline queue",
		},
	)

	// OperationsReplayed tracks offline operations replayed per outcome
	OperationsReplayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolguard_operations_replayed_total",
			Help: "Total number of offline operations replayed",
		},
		[]string{"outcome"},
	)
)
