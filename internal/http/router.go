package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(handler *Handler, logger *zap.Logger, timeout time.Duration) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(Timeout(timeout))
	r.Use(CORS)

	r.Get("/healthz", handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", handler.ListProducts)
		r.Get("/products/{code}", handler.GetProduct)
		r.Post("/products", handler.CreateProduct)
		r.Patch("/products/{code}", handler.PatchProduct)
		r.Delete("/products/{code}", handler.DeleteProduct)

		r.Post("/catalog/import", handler.ImportCatalog)
		r.Put("/catalog", handler.ReplaceCatalog)
		r.Get("/catalog/export", handler.ExportCatalog)
		r.Post("/catalog/seed", handler.SeedCatalog)

		r.Post("/plans/recalculate", handler.Recalculate)
		r.Post("/plans/commands", handler.ApplyCommands)
		r.Post("/plans/report", handler.PlanReport)
		r.Post("/plans/export", handler.ExportPlanWorkbook)
		r.Post("/plans/import", handler.ImportPlan)

		r.Get("/plans", handler.ListPlans)
		r.Post("/plans", handler.SavePlan)
		r.Get("/plans/{id}", handler.LoadPlan)
		r.Get("/plans/{id}/export", handler.ExportPlan)
		r.Patch("/plans/{id}", handler.RenamePlan)
		r.Delete("/plans/{id}", handler.DeletePlan)

		r.Post("/ai/analyze", handler.Analyze)
		r.Post("/ai/assist", handler.Assist)
		r.Post("/ai/transcribe", handler.Transcribe)
		r.Post("/ai/minutes", handler.MeetingMinutes)
		r.Post("/ai/minutes/regenerate", handler.RegenerateMinutes)
	})

	return r
}
