package domain

import "time"

// CheckpointMetadata describes the snapshot payload.
type CheckpointMetadata struct {
	Version     string `json:"version"`
	Description string `json:"description"`
	FileCount   int    `json:"file_count"`
	DataSize    int    `json:"data_size"`
	Checksum    string `json:"checksum"`
}

// Checkpoint is a checksummed snapshot of workspace state. Never
// mutated after creation; evicted oldest-first beyond the per-workspace
// cap.
type Checkpoint struct {
	ID          string             `json:"id"`
	WorkspaceID string             `json:"workspace_id"`
	CreatedAt   time.Time          `json:"created_at"`
	Data        []byte             `json:"data"`
	Metadata    CheckpointMetadata `json:"metadata"`
}
