package storage

import (
	"context"
	"errors"
	"slices"
	"testing"

	"fintrack/internal/core"
)

func TestRegistryStarterSet(t *testing.T) {
	reg := NewCategoryRegistry(newTestDB(t))
	labels, err := reg.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"Entertainment", "Food", "Other", "Rent", "Salary", "Transport", "Utilities"} {
		if !slices.Contains(labels, want) {
			t.Fatalf("starter set missing %q: %v", want, labels)
		}
	}
	if !slices.IsSorted(labels) {
		t.Fatalf("labels not sorted: %v", labels)
	}
}

func TestRegistryAddIsIdempotent(t *testing.T) {
	reg := NewCategoryRegistry(newTestDB(t))
	ctx := context.Background()
	before, _ := reg.List(ctx)

	for i := 0; i < 2; i++ {
		if err := reg.Add(ctx, " Travel "); err != nil {
			t.Fatalf("add #%d: %v", i, err)
		}
	}
	after, _ := reg.List(ctx)
	if len(after) != len(before)+1 || !slices.Contains(after, "Travel") {
		t.Fatalf("expected exactly one new label, before=%v after=%v", before, after)
	}

	if err := reg.Add(ctx, "   "); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error for blank label, got %v", err)
	}
}

func TestRegistryGrowsOnCreate(t *testing.T) {
	db := newTestDB(t)
	reg := NewCategoryRegistry(db)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	mustCreate(t, repo, tx("2024-03-01", "-12", "Pets", "vet"))
	ok, err := reg.Contains(ctx, "Pets")
	if err != nil || !ok {
		t.Fatalf("expected Pets registered, ok=%v err=%v", ok, err)
	}
}

func TestRegistryRemove(t *testing.T) {
	db := newTestDB(t)
	reg := NewCategoryRegistry(db)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	id := mustCreate(t, repo, tx("2024-01-15", "-42.50", "Food", ""))

	err := reg.Remove(ctx, "Food")
	var inUse *core.InUseError
	if !errors.As(err, &inUse) || inUse.References != 1 || inUse.Label != "Food" {
		t.Fatalf("expected InUseError for Food, got %v", err)
	}
	if ok, _ := reg.Contains(ctx, "Food"); !ok {
		t.Fatalf("Food must survive a blocked removal")
	}

	if err := reg.Remove(ctx, "Entertainment"); err != nil {
		t.Fatalf("remove unreferenced: %v", err)
	}
	labels, _ := reg.List(ctx)
	if slices.Contains(labels, "Entertainment") {
		t.Fatalf("Entertainment still listed: %v", labels)
	}

	if err := reg.Remove(ctx, "Entertainment"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found on second removal, got %v", err)
	}

	// Once the last reference is gone the label can be removed.
	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := reg.Remove(ctx, "Food"); err != nil {
		t.Fatalf("remove after delete: %v", err)
	}
}
