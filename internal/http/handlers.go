package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"bizplan/internal/catalog"
	"bizplan/internal/domain"
	"bizplan/internal/llm"
	"bizplan/internal/plan"
	"bizplan/internal/repository"
	"bizplan/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "ai": h.svc.AIEnabled()})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.svc.ListProducts(r.Context(), repository.ProductListFilter{
		Search: query.Get("search"),
		Brand:  query.Get("brand"),
		Group:  query.Get("group"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.svc.GetProduct(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req service.ProductInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateProduct(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type patchProductRequest struct {
	NameEN                 *string  `json:"nameEN"`
	NameVI                 *string  `json:"nameVI"`
	Brand                  *string  `json:"brand"`
	Group                  *string  `json:"group"`
	DefaultWeightKg        *float64 `json:"defaultWeightKg"`
	DefaultPriceUSDPerTon  *float64 `json:"defaultPriceUSDPerTon"`
	DefaultSellingPriceVND *float64 `json:"defaultSellingPriceVND"`
}

func (h *Handler) PatchProduct(w http.ResponseWriter, r *http.Request) {
	var req patchProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.svc.PatchProduct(r.Context(), chi.URLParam(r, "code"), repository.ProductPatchInput{
		NameEN:                 req.NameEN,
		NameVI:                 req.NameVI,
		Brand:                  req.Brand,
		Group:                  req.Group,
		DefaultWeightKg:        req.DefaultWeightKg,
		DefaultPriceUSDPerTon:  req.DefaultPriceUSDPerTon,
		DefaultSellingPriceVND: req.DefaultSellingPriceVND,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ImportCatalog(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	result, err := h.svc.ImportCatalog(r.Context(), header.Filename, file)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type replaceCatalogRequest struct {
	Products []domain.Product `json:"products"`
}

func (h *Handler) ReplaceCatalog(w http.ResponseWriter, r *http.Request) {
	var req replaceCatalogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.ReplaceCatalog(r.Context(), req.Products); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(req.Products)})
}

func (h *Handler) ExportCatalog(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ExportCatalog(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="catalog.json"`)
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) SeedCatalog(w http.ResponseWriter, r *http.Request) {
	seeded, err := h.svc.SeedCatalog(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"seeded": seeded})
}

// fail maps service errors onto HTTP statuses. Anything unrecognized is a 500
// and gets logged; the rest are client-facing.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, plan.ErrInvalidInput), errors.Is(err, catalog.ErrDuplicateCode):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrNotConfigured), errors.Is(err, service.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func parseOptionalInt(raw string, defaultValue int) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %s", raw)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("value cannot be negative")
	}
	return parsed, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
