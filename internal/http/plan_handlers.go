package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"bizplan/internal/domain"
	"bizplan/internal/plan"
	"bizplan/internal/service"

	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// recalculateRequest is a bare draft or a saved plan export. The saved plan
// metadata is accepted and ignored.
type recalculateRequest struct {
	plan.Draft
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	CreatedAt json.RawMessage `json:"createdAt,omitempty"`
}

func (h *Handler) Recalculate(w http.ResponseWriter, r *http.Request) {
	var req recalculateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, service.Calculate(req.Draft))
}

type applyCommandsRequest struct {
	Draft    plan.Draft            `json:"draft"`
	Commands []service.CommandSpec `json:"commands"`
}

func (h *Handler) ApplyCommands(w http.ResponseWriter, r *http.Request) {
	var req applyCommandsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.svc.ApplyCommands(r.Context(), req.Draft, req.Commands)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.svc.ListPlans(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": plans, "count": len(plans)})
}

func (h *Handler) SavePlan(w http.ResponseWriter, r *http.Request) {
	var req service.SavePlanInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := h.svc.SavePlan(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	status := http.StatusCreated
	if req.ID != "" {
		status = http.StatusOK
	}
	writeJSON(w, status, saved)
}

// LoadPlan returns a saved plan recalculated with its stored settings.
func (h *Handler) LoadPlan(w http.ResponseWriter, r *http.Request) {
	loaded, err := h.svc.LoadPlan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loaded)
}

// ExportPlan returns the stored plan as a JSON download that ImportPlan accepts.
func (h *Handler) ExportPlan(w http.ResponseWriter, r *http.Request) {
	saved, err := h.svc.GetPlan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="plan-%s.json"`, saved.ID))
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) ImportPlan(w http.ResponseWriter, r *http.Request) {
	var req domain.SavedPlan
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := h.svc.ImportPlan(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

type renamePlanRequest struct {
	Name string `json:"name"`
}

func (h *Handler) RenamePlan(w http.ResponseWriter, r *http.Request) {
	var req renamePlanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.svc.RenamePlan(r.Context(), id, strings.TrimSpace(req.Name)); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "name": strings.TrimSpace(req.Name)})
}

func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePlan(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reportRequest struct {
	plan.Draft
	PlanName     string `json:"planName"`
	WithAnalysis bool   `json:"withAnalysis"`
}

// PlanReport renders into a buffer first so a failed AI call still maps to a
// JSON error instead of a half-written page.
func (h *Handler) PlanReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var buf bytes.Buffer
	opts := service.ReportOptions{PlanName: req.PlanName, WithAnalysis: req.WithAnalysis}
	if err := h.svc.WriteReport(r.Context(), &buf, req.Draft, opts); err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) ExportPlanWorkbook(w http.ResponseWriter, r *http.Request) {
	var draft plan.Draft
	if err := decodeJSON(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := h.svc.WriteWorkbook(&buf, draft); err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="ke-hoach-kinh-doanh.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
