package integrity

import (
	"testing"

	"github.com/vietddude/toolguard/internal/core/domain"
)

func TestValidateWorkspace(t *testing.T) {
	ws := &domain.Workspace{
		ID:   "ws-1",
		Name: "My Project",
		Files: []domain.FileReference{
			{ID: "f-1", Name: "logo.png"},
			{ID: "f-2", Name: "banner.png"},
		},
	}

	if res := ValidateWorkspace(ws); !res.IsValid {
		t.Fatalf("expected valid workspace, got %+v", res.Errors)
	}
}

func TestValidateWorkspace_MissingFields(t *testing.T) {
	res := ValidateWorkspace(&domain.Workspace{})

	if res.IsValid {
		t.Fatal("expected invalid workspace")
	}
	codes := map[string]bool{}
	for _, issue := range res.Errors {
		codes[issue.Code] = true
	}
	if !codes[CodeMissingID] || !codes[CodeMissingName] {
		t.Errorf("expected missing id and name errors, got %+v", res.Errors)
	}
}

func TestValidateWorkspace_DuplicateFileIDs(t *testing.T) {
	ws := &domain.Workspace{
		ID:   "ws-1",
		Name: "My Project",
		Files: []domain.FileReference{
			{ID: "f-1", Name: "a.png"},
			{ID: "f-1", Name: "b.png"},
		},
	}

	res := ValidateWorkspace(ws)
	if res.IsValid {
		t.Fatal("expected invalid workspace")
	}
	if res.Errors[0].Code != CodeDuplicateFileID {
		t.Errorf("expected duplicate file id error, got %+v", res.Errors)
	}
}

func TestValidateFileReference(t *testing.T) {
	f := &domain.FileReference{ID: "f-1", Name: "logo.png", URL: "https://cdn.example.com/logo.png", Size: 1024}

	if res := ValidateFileReference(f); !res.IsValid {
		t.Fatalf("expected valid file, got %+v", res.Errors)
	}
}

func TestValidateFileReference_BadURL(t *testing.T) {
	f := &domain.FileReference{ID: "f-1", Name: "logo.png", URL: "not a url"}

	res := ValidateFileReference(f)
	if res.IsValid {
		t.Fatal("expected invalid file")
	}
	if res.Errors[0].Code != CodeInvalidURL {
		t.Errorf("expected invalid url error, got %+v", res.Errors)
	}
}

func TestValidateFileReference_NegativeSize(t *testing.T) {
	f := &domain.FileReference{ID: "f-1", Name: "logo.png", Size: -1}

	res := ValidateFileReference(f)
	if res.IsValid || res.Errors[0].Code != CodeInvalidFileSize {
		t.Errorf("expected invalid size error, got %+v", res.Errors)
	}
}

func TestValidateFileReference_LargeFileWarnsOnly(t *testing.T) {
	f := &domain.FileReference{ID: "f-1", Name: "raw.psd", Size: 100 << 20}

	res := ValidateFileReference(f)
	if !res.IsValid {
		t.Fatalf("warnings must not invalidate, got %+v", res.Errors)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Code != CodeFileSizeWarning {
		t.Errorf("expected size warning, got %+v", res.Warnings)
	}
}

func TestValidateTransformation_TypeMismatch(t *testing.T) {
	res := ValidateTransformation(nil,
		Schema{Type: "image"},
		Schema{Type: "document"},
	)

	if res.IsValid {
		t.Fatal("expected incompatible transformation")
	}
	if res.Errors[0].Code != CodeIncompatible {
		t.Errorf("expected incompatibility error, got %+v", res.Errors)
	}
}

func TestValidateTransformation_DroppedFieldWarns(t *testing.T) {
	data := map[string]any{"width": 800, "layers": 4}

	res := ValidateTransformation(data,
		Schema{Type: "image", Required: []string{"width", "layers"}},
		Schema{Type: "image", Required: []string{"width"}},
	)

	if !res.IsValid {
		t.Fatalf("dropped fields warn, not fail: %+v", res.Errors)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Field != "layers" {
		t.Errorf("expected layers drop warning, got %+v", res.Warnings)
	}
}
