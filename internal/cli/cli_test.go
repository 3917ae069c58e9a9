package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizplan/internal/catalog"
	"bizplan/internal/domain"
	"bizplan/internal/llm"
	"bizplan/internal/localstore"
	"bizplan/internal/plan"
	"bizplan/internal/service"
)

// testApp wires an App backed by a temporary SQLite plan store, no database
// catalog and AI disabled.
func testApp(t *testing.T) *App {
	t.Helper()
	store, err := localstore.Open(context.Background(), filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return &App{Service: service.New(nil, store, nil, nil)}
}

func execute(t *testing.T, app *App, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeDraft(t *testing.T) string {
	t.Helper()
	product := catalog.NewProduct("46-ALANA", "Thăn ngoại", "Alana", "Thịt trâu", "Striploin C")
	draft := plan.Draft{
		Items:    []domain.PlanLineItem{plan.NewLineItem(product, "a", 28000, 4675, 130000)},
		Settings: plan.DefaultSettings(),
	}
	data, err := json.Marshal(draft)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "draft.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRecalcCmd(t *testing.T) {
	app := testApp(t)
	path := writeDraft(t)

	out, _, err := execute(t, app, "", "recalc", path)
	require.NoError(t, err)
	var result service.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Items, 1)
	assert.NotZero(t, result.Items[0].Calculated.NetProfit)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out, _, err = execute(t, app, string(data), "recalc", "-", "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Lợi nhuận sau thuế")
	assert.Contains(t, out, "28.000")
}

func TestApplyCmd(t *testing.T) {
	app := testApp(t)
	path := writeDraft(t)
	cmds := filepath.Join(t.TempDir(), "cmds.json")
	require.NoError(t, os.WriteFile(cmds, []byte(`[
		{"type": "set_setting", "setting": "ty_gia_nhap_khau", "value": 27000},
		{"type": "remove_item", "itemId": "zzz"}
	]`), 0o644))

	out, stderr, err := execute(t, app, "", "apply", path, "--commands", cmds, "--draft-only")
	require.NoError(t, err)
	var draft plan.Draft
	require.NoError(t, json.Unmarshal([]byte(out), &draft))
	assert.Equal(t, 27000.0, draft.Settings.ExchangeRateImport)
	assert.Contains(t, stderr, "remove_item")
}

func TestReportAndExportCmds(t *testing.T) {
	app := testApp(t)
	path := writeDraft(t)
	dir := t.TempDir()

	htmlPath := filepath.Join(dir, "report.html")
	_, stderr, err := execute(t, app, "", "report", path, "-o", htmlPath, "--name", "Quý 4")
	require.NoError(t, err)
	assert.Contains(t, stderr, "wrote")
	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "PHƯƠNG ÁN KINH DOANH")

	xlsxPath := filepath.Join(dir, "plan.xlsx")
	_, _, err = execute(t, app, "", "export", path, "-o", xlsxPath)
	require.NoError(t, err)
	data, err := os.ReadFile(xlsxPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))

	_, _, err = execute(t, app, "", "report", path, "--analysis")
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
}

func TestPlansCmds(t *testing.T) {
	app := testApp(t)
	path := writeDraft(t)

	out, _, err := execute(t, app, "", "plans", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved plans.")

	out, _, err = execute(t, app, "", "plans", "save", path, "--name", "Tháng 10")
	require.NoError(t, err)
	assert.Contains(t, out, `Saved plan "Tháng 10"`)

	headers, err := app.Service.ListPlans(context.Background())
	require.NoError(t, err)
	require.Len(t, headers, 1)
	id := headers[0].ID

	out, _, err = execute(t, app, "", "plans", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, _, err = execute(t, app, "", "plans", "show", id, "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Tháng 10")

	raw, _, err := execute(t, app, "", "plans", "show", id, "--raw")
	require.NoError(t, err)

	_, _, err = execute(t, app, "", "plans", "rename", id, "Tháng 11")
	require.NoError(t, err)
	_, _, err = execute(t, app, "", "plans", "delete", id)
	require.NoError(t, err)
	_, _, err = execute(t, app, "", "plans", "show", id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	out, _, err = execute(t, app, raw, "plans", "import", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `Imported plan "Tháng 10"`)
}

func TestCatalogCmds(t *testing.T) {
	app := testApp(t)

	out, _, err := execute(t, app, "", "catalog", "export")
	require.NoError(t, err)
	var products []domain.Product
	require.NoError(t, json.Unmarshal([]byte(out), &products))
	assert.NotEmpty(t, products)

	_, _, err = execute(t, app, "", "catalog", "seed")
	assert.ErrorIs(t, err, service.ErrCatalogUnavailable)
}

func TestCatalogListCmd(t *testing.T) {
	app := testApp(t)

	out, _, err := execute(t, app, "", "catalog", "list", "--group", "thủy hải sản")
	require.NoError(t, err)
	assert.Contains(t, out, "CANUC-NHAT")
	assert.Contains(t, out, "20.000")
	assert.NotContains(t, out, "46-ALANA")
	assert.Contains(t, out, "of 145 products")

	out, _, err = execute(t, app, "", "catalog", "list", "--brand", "Shinwoo")
	require.NoError(t, err)
	assert.Contains(t, out, "10D2-SHINWOO")
	assert.NotContains(t, out, "DUIMAI-LAMEX")

	out, _, err = execute(t, app, "", "catalog", "list", "--brand", "không có")
	require.NoError(t, err)
	assert.Contains(t, out, "No matching products.")

	_, _, err = execute(t, app, "", "catalog", "list", "--brand", "Alana", "--group", "Thịt trâu")
	assert.Error(t, err)
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"ID", "NAME"}, [][]string{{"1", "Thăn ngoại"}, {"22", "x"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], "1   Thăn ngoại")
	assert.Contains(t, lines[3], "22  x")
}
