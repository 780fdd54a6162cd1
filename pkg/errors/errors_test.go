package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppErrorUnwrapsSentinelAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Store("commit index", cause)

	if !errors.Is(err, ErrStore) {
		t.Error("Store error should match ErrStore")
	}
	if !errors.Is(err, cause) {
		t.Error("Store error should match its cause")
	}
	if got := err.Error(); got != "store operation failed: commit index: connection refused" {
		t.Errorf("Error() = %q", got)
	}
}

func TestNewfFormats(t *testing.T) {
	err := Newf(ErrUnknownDocumentType, "%s", "article")
	if !errors.Is(err, ErrUnknownDocumentType) {
		t.Error("Newf error should match its sentinel")
	}
	if got := err.Error(); got != "unknown document type: article" {
		t.Errorf("Error() = %q", got)
	}
}

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrUnknownDocumentType, "article"), http.StatusNotFound},
		{New(ErrInvalidInput, "empty id"), http.StatusBadRequest},
		{New(ErrNormalization, "bad utf-8"), http.StatusBadRequest},
		{Store("rank", errors.New("down")), http.StatusServiceUnavailable},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatusCode(tt.err); got != tt.want {
			t.Errorf("HTTPStatusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
