package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestExpirerEvictsIdleAgents(t *testing.T) {
	svc := newTestSimulation()
	ctx := context.Background()

	agent, err := svc.CreateAgent(ctx, "idle", defaultParams(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	exp := NewExpirerService(svc, zap.NewNop())
	exp.SetTTL(-time.Second) // everything is already past the cutoff

	if removed := exp.RunOnce(ctx); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := svc.GetAgent(ctx, agent.ID); !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("agent survived eviction: %v", err)
	}

	// Runtime map cleaned up too: further operations report not-found.
	if _, err := svc.UpdateBelief(ctx, agent.ID, nil, 1); !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("runtime integrator leaked: %v", err)
	}
}

func TestExpirerKeepsActiveAgents(t *testing.T) {
	svc := newTestSimulation()
	ctx := context.Background()

	agent, err := svc.CreateAgent(ctx, "active", defaultParams(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	exp := NewExpirerService(svc, zap.NewNop())
	exp.SetTTL(time.Hour)

	if removed := exp.RunOnce(ctx); removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}
	if _, err := svc.GetAgent(ctx, agent.ID); err != nil {
		t.Fatal(err)
	}
}
