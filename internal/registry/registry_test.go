package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/searchcore/fulltext/internal/store"
	ferrors "github.com/searchcore/fulltext/pkg/errors"
)

func TestCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	reg := New(store.NewMemory())

	first, err := reg.Create(ctx, "article")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	again, err := reg.Create(ctx, "article")
	if err != nil {
		t.Fatalf("Create (repeat) error: %v", err)
	}
	if first != again {
		t.Errorf("repeated Create returned %d, want existing id %d", again, first)
	}

	other, err := reg.Create(ctx, "comment")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if other == first {
		t.Errorf("distinct types share id %d", other)
	}
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	reg := New(store.NewMemory())

	id, err := reg.Create(ctx, "article")
	if err != nil {
		t.Fatal(err)
	}
	got, err := reg.Lookup(ctx, "article")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if got != id {
		t.Errorf("Lookup = %d, want %d", got, id)
	}

	if _, err := reg.Lookup(ctx, "missing"); !errors.Is(err, ferrors.ErrUnknownDocumentType) {
		t.Errorf("Lookup(missing) error = %v, want ErrUnknownDocumentType", err)
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	reg := New(store.NewMemory())

	if _, err := reg.Create(ctx, "article"); err != nil {
		t.Fatal(err)
	}
	if err := reg.Remove(ctx, "article"); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if _, err := reg.Lookup(ctx, "article"); !errors.Is(err, ferrors.ErrUnknownDocumentType) {
		t.Errorf("Lookup after Remove error = %v, want ErrUnknownDocumentType", err)
	}
	if err := reg.Remove(ctx, "article"); !errors.Is(err, ferrors.ErrUnknownDocumentType) {
		t.Errorf("Remove(missing) error = %v, want ErrUnknownDocumentType", err)
	}
}
