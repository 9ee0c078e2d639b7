package domain

import "time"

// FileReference points at a file stored by an external tool.
type FileReference struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type,omitempty"`
}

// Workspace is the unit of user state the engine protects. The engine
// never interprets tool-specific settings; it only snapshots and
// validates the structure.
type Workspace struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Files     []FileReference `json:"files"`
	Settings  map[string]any  `json:"settings,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}
