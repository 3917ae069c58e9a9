package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bizplan/internal/catalog"
	"bizplan/internal/domain"
	"bizplan/internal/llm"
	"bizplan/internal/localstore"
	"bizplan/internal/plan"
	"bizplan/internal/service"
)

type stubGenerator struct {
	reply string
	last  llm.Request
}

func (g *stubGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	g.last = req
	return g.reply, nil
}

func newTestServer(t *testing.T, gen llm.Generator) http.Handler {
	t.Helper()
	store, err := localstore.Open(context.Background(), filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	var ai *llm.Client
	if gen != nil {
		ai = llm.New(gen, nil)
	}
	svc := service.New(nil, store, ai, nil)
	return NewRouter(NewHandler(svc, nil), nil, 5*time.Second)
}

func sampleDraft() plan.Draft {
	product := catalog.NewProduct("46-ALANA", "Thăn ngoại", "Alana", "Thịt trâu", "Striploin C")
	return plan.Draft{
		Items:    []domain.PlanLineItem{plan.NewLineItem(product, "a", 28000, 4675, 130000)},
		Settings: plan.DefaultSettings(),
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	rec := doJSON(t, newTestServer(t, nil), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","ai":false}`, rec.Body.String())
}

func TestRecalculate(t *testing.T) {
	h := newTestServer(t, nil)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/plans/recalculate", sampleDraft())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decodeBody[service.Result](t, rec)
	want := service.Calculate(sampleDraft())
	require.Len(t, got.Items, 1)
	assert.InDelta(t, want.Items[0].Calculated.NetProfit, got.Items[0].Calculated.NetProfit, 1e-3)
	assert.InDelta(t, want.Summary.TotalRevenue, got.Summary.TotalRevenue, 1e-3)
	assert.InDelta(t, 75_000_000.0/24, got.DailyIndirectSalary, 1e-6)
	assert.InDelta(t, 5, got.Items[0].UserInput.Costs.PurchasingServiceFeeVNDPerContainer/domain.VNDPerMillion, 1e-9)
}

func TestRecalculate_AcceptsSavedPlanExport(t *testing.T) {
	h := newTestServer(t, nil)
	draft := sampleDraft()
	exported := domain.SavedPlan{
		ID:        "0b7e6f3a-3f0c-4a39-9a57-3c1f0f0f7d11",
		Name:      "Tháng 10",
		CreatedAt: time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC),
		PlanItems: draft.Items,
		Settings:  draft.Settings,
	}

	rec := doJSON(t, h, http.MethodPost, "/api/v1/plans/recalculate", exported)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decodeBody[service.Result](t, rec)
	want := service.Calculate(draft)
	require.Len(t, got.Items, 1)
	assert.InDelta(t, want.Items[0].Calculated.NetProfit, got.Items[0].Calculated.NetProfit, 1e-3)
}

func TestRecalculate_RejectsUnknownFields(t *testing.T) {
	h := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/recalculate", strings.NewReader(`{"planItems":[],"bogus":1}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid JSON body"}`, rec.Body.String())
}

func TestApplyCommands(t *testing.T) {
	h := newTestServer(t, nil)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/plans/commands", map[string]any{
		"draft": sampleDraft(),
		"commands": []map[string]any{
			{"type": "set_item_field", "itemId": "a", "field": "so_luong_kg", "value": 56000},
			{"type": "add_item", "productCode": "47-BLACKGOLD", "quantityKg": 14000},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decodeBody[service.ApplyResult](t, rec)
	require.Len(t, got.Outcomes, 2)
	assert.True(t, got.Outcomes[0].OK)
	assert.True(t, got.Outcomes[1].OK)
	require.Len(t, got.Draft.Items, 2)
	assert.Equal(t, 56000.0, got.Draft.Items[0].UserInput.QuantityKg)
	assert.InDelta(t, 70000, got.Result.Summary.TotalQuantityKg, 1e-9)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/plans/commands", map[string]any{
		"draft":    sampleDraft(),
		"commands": []map[string]any{{"type": "teleport"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSavedPlanLifecycle(t *testing.T) {
	h := newTestServer(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/plans", service.SavePlanInput{Name: "Tháng 10", Draft: sampleDraft()})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saved := decodeBody[domain.SavedPlan](t, rec)
	require.NotEmpty(t, saved.ID)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/plans", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[struct {
		Items []domain.SavedPlanHeader `json:"items"`
		Count int                      `json:"count"`
	}](t, rec)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, 1, list.Items[0].ItemCount)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/plans/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	loaded := decodeBody[service.LoadedPlan](t, rec)
	assert.Equal(t, "Tháng 10", loaded.Name)
	assert.NotZero(t, loaded.Items[0].Calculated.TotalRevenue)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/plans/"+saved.ID+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), saved.ID)
	exported := decodeBody[domain.SavedPlan](t, rec)
	assert.Zero(t, exported.PlanItems[0].Calculated.TotalRevenue)

	rec = doJSON(t, h, http.MethodPatch, "/api/v1/plans/"+saved.ID, map[string]string{"name": "  Tháng 11 "})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%q,"name":"Tháng 11"}`, saved.ID), rec.Body.String())

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/plans/"+saved.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/plans/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSavePlan_Invalid(t *testing.T) {
	h := newTestServer(t, nil)
	bad := sampleDraft()
	bad.Settings.WorkingDaysPerMonth = -2

	rec := doJSON(t, h, http.MethodPost, "/api/v1/plans", service.SavePlanInput{Name: "x", Draft: bad})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid plan input")
}

func TestImportPlan(t *testing.T) {
	h := newTestServer(t, nil)
	body := domain.SavedPlan{
		ID:        "1712345678901",
		Name:      "Kế hoạch cũ",
		CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PlanItems: sampleDraft().Items,
		Settings:  plan.DefaultSettings(),
	}
	rec := doJSON(t, h, http.MethodPost, "/api/v1/plans/import", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saved := decodeBody[domain.SavedPlan](t, rec)
	assert.NotEqual(t, body.ID, saved.ID)
	assert.True(t, body.CreatedAt.Equal(saved.CreatedAt))
}

func TestPlanReportAndWorkbook(t *testing.T) {
	h := newTestServer(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/plans/report", map[string]any{
		"planItems": sampleDraft().Items,
		"settings":  sampleDraft().Settings,
		"planName":  "Quý 4",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "PHƯƠNG ÁN KINH DOANH")
	assert.Contains(t, rec.Body.String(), "Quý 4")

	rec = doJSON(t, h, http.MethodPost, "/api/v1/plans/report", map[string]any{
		"planItems":    sampleDraft().Items,
		"settings":     sampleDraft().Settings,
		"withAnalysis": true,
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = doJSON(t, h, http.MethodPost, "/api/v1/plans/export", sampleDraft())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestCatalogWithoutDatabase(t *testing.T) {
	h := newTestServer(t, nil)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/products?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/catalog/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := decodeBody[[]domain.Product](t, rec)
	assert.Equal(t, "46-ALANA", products[0].Code)
}

func TestAI_NotConfigured(t *testing.T) {
	h := newTestServer(t, nil)
	for _, path := range []string{"/api/v1/ai/analyze", "/api/v1/ai/assist"} {
		body := any(sampleDraft())
		if strings.HasSuffix(path, "assist") {
			body = map[string]any{"instruction": "tăng giá bán", "draft": sampleDraft()}
		}
		rec := doJSON(t, h, http.MethodPost, path, body)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestAI_Assist(t *testing.T) {
	gen := &stubGenerator{reply: `{"reply": "Đã tăng giá bán", "actions": [{"name": "bulk_update_products", "args": {"filter_property": "all", "target_property": "gia_ban_vnd", "update_type": "percentage_increase", "update_value": 10}}]}`}
	h := newTestServer(t, gen)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/ai/assist", map[string]any{"instruction": "tăng giá bán 10%", "draft": sampleDraft()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody[service.AssistResult](t, rec)
	assert.Equal(t, "Đã tăng giá bán", got.Reply)
	assert.InDelta(t, 143000, got.Draft.Items[0].UserInput.SellingPriceVNDPerKg, 1e-6)
	assert.True(t, gen.last.JSON)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/ai/assist", map[string]any{"instruction": " ", "draft": sampleDraft()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAI_TranscribeAndMinutes(t *testing.T) {
	gen := &stubGenerator{reply: "Người nói 1: Chào mọi người"}
	h := newTestServer(t, gen)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="hop.webm"`)
	header.Set("Content-Type", "audio/webm")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-audio"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/transcribe", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"transcription":"Người nói 1: Chào mọi người"}`, rec.Body.String())
	require.NotNil(t, gen.last.Audio)
	assert.Equal(t, "audio/webm", gen.last.Audio.MIMEType)

	gen.reply = "```html\n<h1>BIÊN BẢN HỌP</h1>\n```"
	rec = doJSON(t, h, http.MethodPost, "/api/v1/ai/minutes", map[string]any{
		"transcription": "Người nói 1: Chào mọi người",
		"details":       domain.MeetingDetails{Topic: "Kế hoạch quý 4"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"html":"<h1>BIÊN BẢN HỌP</h1>"}`, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/api/v1/ai/minutes/regenerate", map[string]any{
		"transcription": "x",
		"previousHtml":  "<h1>cũ</h1>",
		"editRequest":   "",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("get plan: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: bad", plan.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: 46-ALANA", catalog.ErrDuplicateCode), http.StatusBadRequest},
		{llm.ErrNotConfigured, http.StatusServiceUnavailable},
		{service.ErrCatalogUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
