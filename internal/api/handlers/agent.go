package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/credence-sim/credence/internal/domain"
	"github.com/credence-sim/credence/internal/integrator"
	"github.com/credence-sim/credence/internal/render"
	"github.com/credence-sim/credence/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AgentHandler struct {
	svc *service.SimulationService
}

func NewAgentHandler(svc *service.SimulationService) *AgentHandler {
	return &AgentHandler{svc: svc}
}

type createAgentRequest struct {
	Name     string            `json:"name"`
	Params   domain.Parameters `json:"params"`
	Bounds   *domain.Bounds    `json:"bounds,omitempty"`
	Metadata map[string]any    `json:"metadata,omitempty"`
}

func (h *AgentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	agent, err := h.svc.CreateAgent(r.Context(), req.Name, req.Params, req.Bounds, req.Metadata)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAgentNameEmpty),
			errors.Is(err, integrator.ErrInvalidParameter):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create agent")
		}
		return
	}

	writeJSON(w, http.StatusCreated, agent)
}

func (h *AgentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := agentID(w, r)
	if !ok {
		return
	}

	agent, err := h.svc.GetAgent(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAgentNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get agent")
		return
	}

	writeJSON(w, http.StatusOK, agent)
}

func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	agents, err := h.svc.ListAgents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list agents")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"agents": agents, "count": len(agents)})
}

func (h *AgentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := agentID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteAgent(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrAgentNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete agent")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type observeRequest struct {
	Value float64 `json:"value"`
}

func (h *AgentHandler) Observe(w http.ResponseWriter, r *http.Request) {
	id, ok := agentID(w, r)
	if !ok {
		return
	}

	var req observeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.Observe(r.Context(), id, req.Value); err != nil {
		if errors.Is(err, service.ErrAgentNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to record observation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{"observation": req.Value})
}

type updateRequest struct {
	Observation *float64 `json:"observation,omitempty"`
	Steps       int      `json:"steps"`
}

func (h *AgentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := agentID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.UpdateBelief(r.Context(), id, req.Observation, req.Steps)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAgentNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNoObservation),
			errors.Is(err, service.ErrTooManySteps):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update belief")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type induceLockRequest struct {
	TargetPrecision float64 `json:"target_precision"`
}

func (h *AgentHandler) InduceLock(w http.ResponseWriter, r *http.Request) {
	id, ok := agentID(w, r)
	if !ok {
		return
	}

	// All fields are optional; an absent body selects the defaults.
	var req induceLockRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	agent, err := h.svc.InduceLock(r.Context(), id, req.TargetPrecision)
	if err != nil {
		if errors.Is(err, service.ErrAgentNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to induce regime")
		return
	}

	writeJSON(w, http.StatusOK, agent)
}

func (h *AgentHandler) Relax(w http.ResponseWriter, r *http.Request) {
	id, ok := agentID(w, r)
	if !ok {
		return
	}

	var req integrator.Relaxation
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	agent, err := h.svc.Relax(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, service.ErrAgentNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to relax regime")
		return
	}

	writeJSON(w, http.StatusOK, agent)
}

func (h *AgentHandler) Trajectory(w http.ResponseWriter, r *http.Request) {
	id, ok := agentID(w, r)
	if !ok {
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	points, err := h.svc.Trajectory(r.Context(), id, limit)
	if err != nil {
		if errors.Is(err, service.ErrAgentNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get trajectory")
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, map[string]any{"points": points, "count": len(points)})
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		if err := render.NewCSVSink(w).Write(points); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to render csv")
		}
	case "sparkline":
		writeJSON(w, http.StatusOK, map[string]any{
			"sparkline": render.Sparkline(points, 80),
			"count":     len(points),
		})
	case "chart":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(render.Chart(points, 80, 16) + "\n"))
	default:
		writeError(w, http.StatusBadRequest, "unknown format")
	}
}

func (h *AgentHandler) Stability(w http.ResponseWriter, r *http.Request) {
	id, ok := agentID(w, r)
	if !ok {
		return
	}

	report, err := h.svc.Stability(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAgentNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get stability report")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func agentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid agent id")
		return uuid.Nil, false
	}
	return id, true
}
