// Package integrity validates workspace data shapes and protects
// workspace state with checksummed checkpoints.
package integrity

import (
	"fmt"
	"net/url"

	"github.com/vietddude/toolguard/internal/core/domain"
)

// Validation issue codes.
const (
	CodeMissingID        = "MISSING_ID"
	CodeMissingName      = "MISSING_NAME"
	CodeDuplicateFileID  = "DUPLICATE_FILE_ID"
	CodeMissingFileID    = "MISSING_FILE_ID"
	CodeInvalidFileSize  = "INVALID_FILE_SIZE"
	CodeInvalidURL       = "INVALID_URL"
	CodeFileSizeWarning  = "FILE_SIZE_WARNING"
	CodeIncompatible     = "INCOMPATIBLE_TRANSFORMATION"
	CodeFieldDropped     = "FIELD_DROPPED"
)

// fileSizeWarnBytes is the threshold above which a file reference gets
// a size warning without failing validation.
const fileSizeWarnBytes = 50 << 20 // 50 MiB

// Issue is a single validation finding.
type Issue struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result aggregates validation findings. Warnings never make a result
// invalid.
type Result struct {
	IsValid  bool    `json:"is_valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

func (r *Result) addError(code, field, message string) {
	r.Errors = append(r.Errors, Issue{Code: code, Field: field, Message: message})
	r.IsValid = false
}

func (r *Result) addWarning(code, field, message string) {
	r.Warnings = append(r.Warnings, Issue{Code: code, Field: field, Message: message})
}

// ValidateWorkspace checks required fields and file id uniqueness.
func ValidateWorkspace(ws *domain.Workspace) Result {
	res := Result{IsValid: true}

	if ws == nil {
		res.addError(CodeMissingID, "", "workspace is nil")
		return res
	}
	if ws.ID == "" {
		res.addError(CodeMissingID, "id", "workspace id is required")
	}
	if ws.Name == "" {
		res.addError(CodeMissingName, "name", "workspace name is required")
	}

	seen := make(map[string]bool, len(ws.Files))
	for _, f := range ws.Files {
		if f.ID == "" {
			continue // reported by ValidateFileReference
		}
		if seen[f.ID] {
			res.addError(CodeDuplicateFileID, "files",
				fmt.Sprintf("duplicate file id %q", f.ID))
		}
		seen[f.ID] = true
	}

	return res
}

// ValidateFileReference checks a single file entry.
func ValidateFileReference(f *domain.FileReference) Result {
	res := Result{IsValid: true}

	if f == nil {
		res.addError(CodeMissingFileID, "", "file reference is nil")
		return res
	}
	if f.ID == "" {
		res.addError(CodeMissingFileID, "id", "file id is required")
	}
	if f.Size < 0 {
		res.addError(CodeInvalidFileSize, "size",
			fmt.Sprintf("file size must be non-negative, got %d", f.Size))
	}
	if f.URL != "" {
		u, err := url.Parse(f.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			res.addError(CodeInvalidURL, "url",
				fmt.Sprintf("malformed file URL %q", f.URL))
		}
	}
	if f.Size > fileSizeWarnBytes {
		res.addWarning(CodeFileSizeWarning, "size",
			fmt.Sprintf("file %q exceeds %d bytes and may slow down tools", f.Name, int64(fileSizeWarnBytes)))
	}

	return res
}

// Schema describes one side of a data transformation.
type Schema struct {
	Type     string   `json:"type"`
	Required []string `json:"required,omitempty"`
	Optional []string `json:"optional,omitempty"`
}

// ValidateTransformation checks schema compatibility and warns about
// source fields the target schema would drop.
func ValidateTransformation(data map[string]any, source, target Schema) Result {
	res := Result{IsValid: true}

	if source.Type != target.Type {
		res.addError(CodeIncompatible, "type",
			fmt.Sprintf("cannot transform %q into %q", source.Type, target.Type))
		return res
	}

	kept := make(map[string]bool, len(target.Required)+len(target.Optional))
	for _, f := range target.Required {
		kept[f] = true
	}
	for _, f := range target.Optional {
		kept[f] = true
	}

	for field := range data {
		if !kept[field] {
			res.addWarning(CodeFieldDropped, field,
				fmt.Sprintf("field %q is not part of the target schema and will be dropped", field))
		}
	}

	return res
}
