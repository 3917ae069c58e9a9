package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizplan/internal/domain"
)

func chickenWing() domain.Product {
	return domain.Product{
		Code:                   "CK-WING",
		NameEN:                 "Chicken wing",
		NameVI:                 "Cánh gà",
		Brand:                  "Seara",
		Group:                  "Thịt gà",
		DefaultWeightKg:        22000,
		DefaultPriceUSDPerTon:  1450,
		DefaultSellingPriceVND: 48000,
	}
}

func sampleDraft() Draft {
	return Draft{
		Items: []domain.PlanLineItem{
			NewLineItem(striploin(), "beef", 28000, 4675, 130000),
			NewLineItem(chickenWing(), "wing", 22000, 1450, 48000),
		},
		Settings: DefaultSettings(),
	}
}

func TestApply_SetItemField(t *testing.T) {
	d := sampleDraft()

	next, outs := Apply(d, SetItemField{ItemID: "wing", Field: FieldQuantityKg, Value: 44000})

	require.Len(t, outs, 1)
	assert.True(t, outs[0].OK)
	assert.Equal(t, "set_item_field", outs[0].Command)
	assert.Equal(t, 44000.0, next.Items[1].UserInput.QuantityKg)
	assert.Equal(t, 22000.0, d.Items[1].UserInput.QuantityKg, "original draft must be untouched")
}

func TestApply_SetItemFieldUnknownItem(t *testing.T) {
	next, outs := Apply(sampleDraft(), SetItemField{ItemID: "nope", Field: FieldQuantityKg, Value: 1})

	assert.False(t, outs[0].OK)
	assert.Contains(t, outs[0].Message, "nope")
	assert.Equal(t, sampleDraft(), next)
}

func TestApply_BulkUpdateByGroup(t *testing.T) {
	cmd := BulkUpdate{
		Filter: Filter{By: FilterGroup, Value: "thịt gà"},
		Field:  FieldSellingPriceVNDPerKg,
		Op:     OpPctIncrease,
		Value:  10,
	}

	next, outs := Apply(sampleDraft(), cmd)

	require.True(t, outs[0].OK)
	assert.Equal(t, 1, outs[0].Affected)
	assert.InDelta(t, 52800, next.Items[1].UserInput.SellingPriceVNDPerKg, tolerance)
	assert.Equal(t, 130000.0, next.Items[0].UserInput.SellingPriceVNDPerKg)
}

func TestApply_BulkUpdateAllCostField(t *testing.T) {
	cmd := BulkUpdate{Filter: Filter{By: FilterAll}, Field: FieldPostClearanceStorageDays, Op: OpSet, Value: 15}

	next, outs := Apply(sampleDraft(), cmd)

	require.True(t, outs[0].OK)
	assert.Equal(t, 2, outs[0].Affected)
	for _, item := range next.Items {
		assert.Equal(t, 15.0, item.UserInput.Costs.PostClearanceStorageDays)
	}
}

func TestApply_BulkUpdateNoMatch(t *testing.T) {
	cmd := BulkUpdate{Filter: Filter{By: FilterBrand, Value: "Unknown"}, Field: FieldQuantityKg, Op: OpSet, Value: 1}

	_, outs := Apply(sampleDraft(), cmd)

	assert.False(t, outs[0].OK)
	assert.Zero(t, outs[0].Affected)
}

func TestApply_BulkUpdateUnknownOp(t *testing.T) {
	cmd := BulkUpdate{Filter: Filter{By: FilterAll}, Field: FieldQuantityKg, Op: "double", Value: 1}

	next, outs := Apply(sampleDraft(), cmd)

	assert.False(t, outs[0].OK)
	assert.Equal(t, 28000.0, next.Items[0].UserInput.QuantityKg)
}

func TestUpdateOp_Eval(t *testing.T) {
	tests := []struct {
		op   UpdateOp
		want float64
	}{
		{OpSet, 10},
		{OpPctIncrease, 110},
		{OpPctDecrease, 90},
		{OpAbsIncrease, 110},
		{OpAbsDecrease, 90},
	}
	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			got, ok := tt.op.Eval(100, 10)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, tolerance)
		})
	}
}

func TestApply_SetSetting(t *testing.T) {
	next, outs := Apply(sampleDraft(), SetSetting{Setting: SettingExchangeRateImport, Value: 25000})

	require.True(t, outs[0].OK)
	assert.Equal(t, 25000.0, next.Settings.ExchangeRateImport)
}

func TestApply_AddItemUsesCatalogDefaults(t *testing.T) {
	pork := domain.Product{
		Code: "PK-BELLY", NameVI: "Ba chỉ", Group: "Thịt heo",
		DefaultWeightKg: 25000, DefaultPriceUSDPerTon: 2500, DefaultSellingPriceVND: 80000,
	}
	price := 2600.0

	next, outs := Apply(sampleDraft(), AddItem{ID: "belly", Product: pork, QuantityKg: 5000, PriceUSDPerTon: &price})

	require.True(t, outs[0].OK)
	require.Len(t, next.Items, 3)
	added := next.Items[2]
	assert.Equal(t, "belly", added.ID)
	assert.Equal(t, 2600.0, added.UserInput.PriceUSDPerTon)
	assert.Equal(t, 80000.0, added.UserInput.SellingPriceVNDPerKg)
	assert.Equal(t, DefaultCostInputs(), added.UserInput.Costs)
}

func TestApply_AddItemDuplicateID(t *testing.T) {
	next, outs := Apply(sampleDraft(), AddItem{ID: "beef", Product: striploin(), QuantityKg: 1})

	assert.False(t, outs[0].OK)
	assert.Len(t, next.Items, 2)
}

func TestApply_RemoveItemKeepsOriginalSlice(t *testing.T) {
	d := sampleDraft()

	next, outs := Apply(d, RemoveItem{ItemID: "beef"})

	require.True(t, outs[0].OK)
	require.Len(t, next.Items, 1)
	assert.Equal(t, "wing", next.Items[0].ID)
	assert.Equal(t, "beef", d.Items[0].ID)
	assert.Equal(t, "wing", d.Items[1].ID)
}

func TestApply_SequenceFeedsRecalculate(t *testing.T) {
	d := sampleDraft()

	next, outs := Apply(d,
		RemoveItem{ItemID: "wing"},
		SetSetting{Setting: SettingTotalMonthlyRent, Value: 40000},
	)
	for _, out := range outs {
		require.True(t, out.OK, out.Message)
	}

	items := Recalculate(next.Items, next.Settings)
	assert.InDelta(t, 40000, items[0].Calculated.Rent, tolerance)
}

func TestFindItem(t *testing.T) {
	items := sampleDraft().Items

	tests := []struct {
		name   string
		wantID string
		found  bool
	}{
		{"Thịt gà - Cánh gà", "wing", true},
		{"thăn ngoại", "beef", true},
		{"cánh", "wing", true},
		{"trâu", "beef", true},
		{"sườn", "", false},
		{"  ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := FindItem(items, tt.name)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.wantID, item.ID)
		})
	}
}

func TestParseField(t *testing.T) {
	f, err := ParseField("so_luong_kg")
	require.NoError(t, err)
	assert.Equal(t, FieldQuantityKg, f)

	f, err = ParseField("Import VAT Rate")
	require.NoError(t, err)
	assert.Equal(t, FieldImportVATRate, f)

	_, err = ParseField("colour")
	assert.Error(t, err)
}

func TestParseSetting(t *testing.T) {
	s, err := ParseSetting("ty_gia_nhap_khau")
	require.NoError(t, err)
	assert.Equal(t, SettingExchangeRateImport, s)

	_, err = ParseSetting("")
	assert.Error(t, err)
}

func TestFieldsCoverEveryKey(t *testing.T) {
	assert.Len(t, Fields(), len(fieldSpecs))
	assert.Len(t, Settings(), len(settingSpecs))

	in := domain.UserInput{}
	for i, f := range Fields() {
		in = f.Set(in, float64(i+1))
	}
	for i, f := range Fields() {
		assert.Equal(t, float64(i+1), f.Get(in), f.String())
	}
}
