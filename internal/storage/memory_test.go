package storage

import (
	"context"
	"testing"

	usermodel "github.com/sanjitgh/authorization-server-side/internal/models/user"
)

func newTestUser(name string, shops ...string) *usermodel.User {
	return &usermodel.User{
		UserName:     name,
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		ShopNames:    shops,
	}
}

func TestMemoryStorage_InsertAssignsID(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	stored, err := store.Insert(ctx, newTestUser("alice", "my shop"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.ID == "" {
		t.Error("expected store to assign an ID")
	}
	if stored.CreatedAt.IsZero() {
		t.Error("expected store to set CreatedAt")
	}
}

func TestMemoryStorage_DuplicateUserName(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	if _, err := store.Insert(ctx, newTestUser("alice", "shop-a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := store.Insert(ctx, newTestUser("alice", "shop-b"))
	if err != ErrDuplicateUserName {
		t.Errorf("expected ErrDuplicateUserName, got %v", err)
	}
}

func TestMemoryStorage_DuplicateShopNameAcrossUsers(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	if _, err := store.Insert(ctx, newTestUser("alice", "shop-a", "shop-b")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Shop names are unique across the whole collection, not per user.
	_, err := store.Insert(ctx, newTestUser("bob", "shop-c", "shop-b"))
	if err != ErrDuplicateShopName {
		t.Errorf("expected ErrDuplicateShopName, got %v", err)
	}
}

func TestMemoryStorage_ShopLessUsersNeverCollide(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	// An empty shop list contributes nothing to the uniqueness set, so any
	// number of shop-less users can coexist.
	for _, name := range []string{"alice", "bob", "carol"} {
		if _, err := store.Insert(ctx, newTestUser(name)); err != nil {
			t.Fatalf("shop-less insert for %s failed: %v", name, err)
		}
	}
}

func TestMemoryStorage_FindByUserName(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	if _, err := store.Insert(ctx, newTestUser("alice", "shop-a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := store.FindByUserName(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found == nil || found.UserName != "alice" {
		t.Fatalf("expected to find alice, got %+v", found)
	}

	// Exact match only; user names are not case-normalized.
	found, err = store.FindByUserName(ctx, "Alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != nil {
		t.Errorf("expected case-sensitive miss, got %+v", found)
	}
}

func TestMemoryStorage_FindByShopNameAny(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	if _, err := store.Insert(ctx, newTestUser("alice", "shop-a", "shop-b")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := store.FindByShopNameAny(ctx, []string{"shop-x", "shop-b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found == nil || found.UserName != "alice" {
		t.Fatalf("expected overlap to find alice, got %+v", found)
	}

	found, err = store.FindByShopNameAny(ctx, []string{"shop-x", "shop-y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != nil {
		t.Errorf("expected no overlap, got %+v", found)
	}
}

func TestMemoryStorage_FindByID(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	stored, err := store.Insert(ctx, newTestUser("alice", "shop-a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := store.FindByID(ctx, stored.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found == nil || found.ID != stored.ID {
		t.Fatalf("expected to find user by id, got %+v", found)
	}

	found, err = store.FindByID(ctx, "missing-id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != nil {
		t.Errorf("expected nil for unknown id, got %+v", found)
	}
}

func TestMemoryStorage_ReturnsCopies(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	stored, err := store.Insert(ctx, newTestUser("alice", "shop-a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored.ShopNames[0] = "mutated"

	found, err := store.FindByID(ctx, stored.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.ShopNames[0] != "shop-a" {
		t.Errorf("store leaked internal state: %v", found.ShopNames)
	}
}
