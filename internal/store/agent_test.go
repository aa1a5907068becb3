package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/credence-sim/credence/internal/domain"
	"github.com/google/uuid"
)

func TestAgentStoreCRUD(t *testing.T) {
	s := NewAgentStore()
	ctx := context.Background()

	a := &domain.Agent{Name: "demo", Params: domain.Parameters{PriorMean: 0.9, StepSize: 0.01}}
	if err := s.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	if a.ID == uuid.Nil {
		t.Fatal("Create did not assign an ID")
	}

	got, err := s.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "demo" {
		t.Fatalf("name = %q", got.Name)
	}

	// Returned record is a copy.
	got.Name = "mutated"
	again, _ := s.GetByID(ctx, a.ID)
	if again.Name != "demo" {
		t.Fatal("GetByID exposed internal record")
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("list length = %d", len(list))
	}

	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetByID(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: expected ErrNotFound, got %v", err)
	}
}

func TestAgentStoreUpdateSnapshot(t *testing.T) {
	s := NewAgentStore()
	ctx := context.Background()

	a := &domain.Agent{Name: "demo"}
	if err := s.Create(ctx, a); err != nil {
		t.Fatal(err)
	}

	params := domain.Parameters{PriorMean: 0.9, PriorPrecision: 10000, SensoryPrecision: 1, StepSize: 5e-5}
	if err := s.UpdateSnapshot(ctx, a.ID, params, domain.RegimeLocked, 0.89, 5000); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetByID(ctx, a.ID)
	if got.Regime != domain.RegimeLocked || got.Belief != 0.89 || got.Steps != 5000 {
		t.Fatalf("snapshot not applied: %+v", got)
	}
	if got.Params != params {
		t.Fatalf("params = %+v", got.Params)
	}

	if err := s.UpdateSnapshot(ctx, uuid.New(), params, domain.RegimeLocked, 0, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAgentStoreDeleteIdle(t *testing.T) {
	s := NewAgentStore()
	ctx := context.Background()

	stale := &domain.Agent{Name: "stale"}
	fresh := &domain.Agent{Name: "fresh"}
	if err := s.Create(ctx, stale); err != nil {
		t.Fatal(err)
	}
	if err := s.Create(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	// Backdate the stale agent past the cutoff.
	s.mu.Lock()
	s.agents[stale.ID].LastActiveAt = time.Now().UTC().Add(-2 * time.Hour)
	s.mu.Unlock()

	removed, err := s.DeleteIdle(ctx, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 1 || removed[0] != stale.ID {
		t.Fatalf("removed = %v, want [%v]", removed, stale.ID)
	}
	if _, err := s.GetByID(ctx, fresh.ID); err != nil {
		t.Fatalf("fresh agent evicted: %v", err)
	}
}
