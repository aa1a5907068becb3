package domain

import (
	"time"

	"github.com/google/uuid"
)

// Agent is a registered simulation instance: one belief integrator plus the
// metadata the API exposes. Belief, Params and Regime are snapshots refreshed
// by the service after each mutating operation.
type Agent struct {
	ID           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	Params       Parameters     `json:"params"`
	Bounds       *Bounds        `json:"bounds,omitempty"`
	Regime       Regime         `json:"regime"`
	Belief       float64        `json:"belief"`
	Steps        int            `json:"steps"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	LastActiveAt time.Time      `json:"last_active_at"`
}
