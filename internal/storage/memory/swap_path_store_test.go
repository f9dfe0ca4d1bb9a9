package memory

import (
	"context"
	"errors"
	"testing"

	"solana-arb-lab/internal/domain"
	"solana-arb-lab/internal/storage"
)

func testPath(id string, pools ...string) domain.SwapPath {
	p := domain.SwapPath{ID: id, Hops: len(pools) - 1}
	for i, pool := range pools {
		routeID := id + "-r" + string(rune('0'+i))
		p.Routes = append(p.Routes, domain.Route{ID: routeID, PoolAddress: pool, Dex: domain.DexRaydium})
		p.RouteIDs = append(p.RouteIDs, routeID)
	}
	return p
}

func TestSwapPathStore_PreservesOrder(t *testing.T) {
	store := NewSwapPathStore()
	ctx := context.Background()

	paths := []domain.SwapPath{
		testPath("z", "p1", "p2"),
		testPath("a", "p1", "p2", "p3"),
		testPath("m", "p2", "p1"),
	}
	if err := store.InsertBulk(ctx, "run1", paths); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	paths[0].Routes[0].PoolAddress = "mutated"

	got, err := store.GetByRunID(ctx, "run1")
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 paths, got %d", len(got))
	}
	for i, want := range []string{"z", "a", "m"} {
		if got[i].ID != want {
			t.Errorf("Position %d: got %s, want %s", i, got[i].ID, want)
		}
	}
	if got[0].Routes[0].PoolAddress != "p1" {
		t.Error("Stored path changed through caller slice")
	}

	empty, err := store.GetByRunID(ctx, "other")
	if err != nil || len(empty) != 0 {
		t.Errorf("Expected no paths for unknown run, got %d (%v)", len(empty), err)
	}
}

func TestSwapPathStore_Errors(t *testing.T) {
	store := NewSwapPathStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, "", []domain.SwapPath{testPath("a", "p1", "p2")}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}

	if err := store.InsertBulk(ctx, "run1", []domain.SwapPath{testPath("a", "p1", "p2")}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	if err := store.InsertBulk(ctx, "run1", []domain.SwapPath{testPath("a", "p1", "p2")}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
	// Same path id in another run is fine
	if err := store.InsertBulk(ctx, "run2", []domain.SwapPath{testPath("a", "p1", "p2")}); err != nil {
		t.Errorf("InsertBulk into another run failed: %v", err)
	}
}
