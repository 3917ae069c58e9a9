package excel

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bizplan/internal/catalog"
	"bizplan/internal/domain"
	"bizplan/internal/plan"
)

func TestParseCatalogRows_CSV(t *testing.T) {
	data := "Mã hàng,Tên sản phẩm,Thương hiệu,Nhóm hàng,Giá mua (USD/tấn)\n" +
		"46-ALANA,Thăn ngoại,Alana,Thịt trâu,\"4,675\"\n" +
		",,,,\n" +
		"L-CHICKEN,Gà Hàn Quốc (L),Generic,Thịt gà,1500\n"

	products, err := ParseCatalogRows("catalog.csv", strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "46-ALANA", products[0].Code)
	assert.Equal(t, 4675.0, products[0].DefaultPriceUSDPerTon)
	assert.Equal(t, 28000.0, products[0].DefaultWeightKg)
	assert.Equal(t, "N/A", products[0].NameEN)
	assert.Equal(t, 22000.0, products[1].DefaultWeightKg)
	assert.Equal(t, 48000.0, products[1].DefaultSellingPriceVND)
}

func TestParseCatalogRows_XLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"code", "name_vi", "name_en", "group", "selling price"},
		{"CK-1", "Cánh gà", "Wing", "Thịt gà", "52.000"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	products, err := ParseCatalogRows("catalog.xlsx", &buf)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Wing", products[0].NameEN)
	assert.Equal(t, 52000.0, products[0].DefaultSellingPriceVND)
}

func TestParseCatalogRows_Errors(t *testing.T) {
	tests := map[string]string{
		"missing code": "Tên sản phẩm\nThăn\n",
		"bad number":   "code,name vi,weight kg\nA,Thăn,heavy\n",
		"duplicate":    "code,name vi\nA,Thăn\na,Nạm\n",
		"no data rows": "code,name vi\n,\n",
		"negative":     "code,name vi,giá bán\nA,Thăn,-5\n",
		"missing name": "code,name vi\nA,\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalogRows("c.csv", strings.NewReader(data))
			assert.Error(t, err)
		})
	}

	_, err := ParseCatalogRows("c.csv", strings.NewReader("code,name vi\nA,Thăn\na,Nạm\n"))
	assert.ErrorIs(t, err, catalog.ErrDuplicateCode)
}

func TestParseFloat(t *testing.T) {
	tests := map[string]float64{
		"4,675":     4675,
		"125.000 đ": 125000,
		"1.250.000": 1250000,
		"4.5":       4.5,
		"48000 VND": 48000,
		"4.675,50":  4675.5,
		"1,5":       1.5,
		"4,675.50":  4675.5,
		"125.000":   125000,
		"1,250,000": 1250000,
		"2.500,5 đ": 2500.5,
	}
	for in, want := range tests {
		got, err := parseFloat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestWritePlan(t *testing.T) {
	products, err := catalog.Builtin()
	require.NoError(t, err)
	items := []domain.PlanLineItem{
		plan.NewLineItem(products[0], "a", 28000, 4675, 130000),
		plan.NewLineItem(products[1], "b", 14000, 4275, 120000),
	}
	settings := plan.DefaultSettings()
	items = plan.Recalculate(items, settings)

	var buf bytes.Buffer
	require.NoError(t, WritePlan(&buf, items, settings))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{PlanSheet, SettingsSheet}, f.GetSheetList())

	rows, err := f.GetRows(PlanSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Mã", rows[0][0])
	assert.Equal(t, "46-ALANA", rows[1][0])
	assert.Equal(t, "TỔNG CỘNG", rows[3][0])

	qty, err := f.GetCellValue(PlanSheet, "D4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "42000", qty)

	settingRows, err := f.GetRows(SettingsSheet)
	require.NoError(t, err)
	assert.Len(t, settingRows, len(plan.Settings())+2)
	assert.Equal(t, "ty_gia_nhap_khau", settingRows[1][0])
}
