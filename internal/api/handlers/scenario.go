package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/credence-sim/credence/internal/integrator"
	"github.com/credence-sim/credence/internal/service"
)

type ScenarioHandler struct {
	svc *service.ScenarioService
}

func NewScenarioHandler(svc *service.ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{svc: svc}
}

// Run executes the lock-then-relax demonstration with request-supplied
// parameters (or the built-in defaults) and returns both phase summaries.
func (h *ScenarioHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req service.ScenarioRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := h.svc.Run(r.Context(), req)
	if err != nil {
		if errors.Is(err, integrator.ErrInvalidParameter) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to run scenario")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
