package api

import (
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/credence-sim/credence/internal/api/handlers"
	mw "github.com/credence-sim/credence/internal/api/middleware"
	"github.com/credence-sim/credence/internal/config"
	"github.com/credence-sim/credence/internal/domain"
	"github.com/credence-sim/credence/internal/render"
	"github.com/credence-sim/credence/internal/service"
	"github.com/credence-sim/credence/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router  *chi.Mux
	Expirer *service.ExpirerService

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(logger *zap.Logger) *App {
	agentStore := store.NewAgentStore()

	simSvc := service.NewSimulationService(agentStore, logger)
	simSvc.SetMaxSteps(config.MaxStepsPerRequest())

	var sinks []domain.TrajectorySink
	if config.ScenarioTrace() {
		sinks = append(sinks, render.NewConsoleSink(os.Stdout, 500))
	}
	scenarioSvc := service.NewScenarioService(logger, sinks...)

	expirerSvc := service.NewExpirerService(simSvc, logger)
	expirerSvc.SetTTL(config.AgentTTL())

	agentHandler := handlers.NewAgentHandler(simSvc)
	scenarioHandler := handlers.NewScenarioHandler(scenarioSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Expirer:   expirerSvc,
		startTime: time.Now(),
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.CountRequests(&app.requestCount, &app.errorCount))
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health (no auth)
	r.Get("/health", healthHandler())

	// Metrics (no auth)
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(config.APIKey()))

		r.Route("/agents", func(r chi.Router) {
			r.Get("/", agentHandler.List)
			r.Post("/", agentHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", agentHandler.GetByID)
				r.Delete("/", agentHandler.Delete)
				r.Post("/observe", agentHandler.Observe)
				r.Post("/update", agentHandler.Update)
				r.Post("/regime/lock", agentHandler.InduceLock)
				r.Post("/regime/relax", agentHandler.Relax)
				r.Get("/trajectory", agentHandler.Trajectory)
				r.Get("/stability", agentHandler.Stability)
			})
		})

		r.Post("/scenarios/run", scenarioHandler.Run)
	})

	return app
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
