package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsUnwrapsWrappedErrors(t *testing.T) {
	base := NewError(CodeNotFound, "connection not found", nil)
	wrapped := fmt.Errorf("load: %w", base)
	if !Is(wrapped, CodeNotFound) {
		t.Fatalf("expected not_found, got %s", CodeOf(wrapped))
	}
	if Is(wrapped, CodeForbidden) {
		t.Fatal("expected code mismatch")
	}
}

func TestCodeOfForeignError(t *testing.T) {
	if code := CodeOf(errors.New("boom")); code != CodeInternal {
		t.Fatalf("expected internal_error, got %s", code)
	}
	if code := CodeOf(nil); code != "" {
		t.Fatalf("expected empty code for nil, got %s", code)
	}
}

func TestParseUUIDNormalizes(t *testing.T) {
	id, err := ParseUUID(" 6F9619FF-8B86-D011-B42D-00C04FC964FF ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.String() != "6f9619ff-8b86-d011-b42d-00c04fc964ff" {
		t.Fatalf("unexpected normalized id %s", id)
	}
	if _, err := ParseUUID("not-a-uuid"); err == nil {
		t.Fatal("expected parse error")
	}
}
