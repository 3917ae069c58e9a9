package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"bizplan/internal/catalog"
	"bizplan/internal/domain"

	"github.com/xuri/excelize/v2"
)

var headerAliases = map[string]string{
	"code":                      "code",
	"product code":              "code",
	"sku":                       "code",
	"mã":                        "code",
	"mã hàng":                   "code",
	"mã sản phẩm":               "code",
	"name vi":                   "name_vi",
	"tên":                       "name_vi",
	"tên hàng":                  "name_vi",
	"tên sản phẩm":              "name_vi",
	"name en":                   "name_en",
	"name":                      "name_en",
	"english name":              "name_en",
	"tên tiếng anh":             "name_en",
	"brand":                     "brand",
	"thương hiệu":               "brand",
	"nhãn hiệu":                 "brand",
	"group":                     "group",
	"product group":             "group",
	"nhóm":                      "group",
	"nhóm hàng":                 "group",
	"default weight kg":         "weight",
	"weight kg":                 "weight",
	"kg/cont":                   "weight",
	"trọng lượng cont":          "weight",
	"default price usd per ton": "price_usd",
	"price usd":                 "price_usd",
	"usd/ton":                   "price_usd",
	"giá mua":                   "price_usd",
	"giá mua (usd/tấn)":         "price_usd",
	"default selling price vnd": "selling_vnd",
	"selling price":             "selling_vnd",
	"giá bán":                   "selling_vnd",
	"giá bán (vnd/kg)":          "selling_vnd",
}

// ParseCatalogRows reads a product list from xlsx or csv. Only code and
// Vietnamese name are required; missing weight and prices fall back to the
// product group defaults.
func ParseCatalogRows(fileName string, reader io.Reader) ([]domain.Product, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}

	var rows [][]string
	switch strings.ToLower(strings.TrimSpace(filepath.Ext(fileName))) {
	case ".csv":
		rows, err = parseCSVRows(data)
	case ".xlsx", ".xlsm":
		rows, err = parseExcelRows(data)
	default:
		rows, err = parseExcelRows(data)
		if err != nil {
			rows, err = parseCSVRows(data)
		}
	}
	if err != nil {
		return nil, err
	}
	return parseCatalogTable(rows)
}

func parseCatalogTable(rows [][]string) ([]domain.Product, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}
	colMap := mapColumns(rows[0])
	for _, required := range []string{"code", "name_vi"} {
		if _, ok := colMap[required]; !ok {
			return nil, fmt.Errorf("missing required column: %s", required)
		}
	}

	result := make([]domain.Product, 0, len(rows)-1)
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		code := strings.TrimSpace(readCell(cells, colMap["code"]))
		if code == "" {
			continue
		}

		product := catalog.NewProduct(
			code,
			readOptionalCell(cells, colMap, "name_vi"),
			readOptionalCell(cells, colMap, "brand"),
			readOptionalCell(cells, colMap, "group"),
			readOptionalCell(cells, colMap, "name_en"),
		)
		if product.NameVI == "" {
			return nil, fmt.Errorf("row %d: name is required", index+1)
		}

		numbers := []struct {
			key string
			dst *float64
		}{
			{"weight", &product.DefaultWeightKg},
			{"price_usd", &product.DefaultPriceUSDPerTon},
			{"selling_vnd", &product.DefaultSellingPriceVND},
		}
		for _, n := range numbers {
			raw := strings.TrimSpace(readOptionalCell(cells, colMap, n.key))
			if raw == "" {
				continue
			}
			value, err := parseFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d invalid %s: %w", index+1, n.key, err)
			}
			if value < 0 {
				return nil, fmt.Errorf("row %d invalid %s: cannot be negative", index+1, n.key)
			}
			*n.dst = value
		}

		result = append(result, product)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("file has no valid data rows")
	}
	if err := catalog.CheckUnique(result); err != nil {
		return nil, err
	}
	return result, nil
}

func parseCSVRows(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv file is empty")
	}
	return rows, nil
}

func parseExcelRows(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}
	return rows, nil
}

func mapColumns(header []string) map[string]int {
	mapped := make(map[string]int)
	for idx, col := range header {
		normalized := normalizeHeader(col)
		if normalized == "" {
			continue
		}
		canonical, ok := headerAliases[normalized]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

func normalizeHeader(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\ufeff")
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "_", " ")
	value = strings.Join(strings.Fields(value), " ")
	return value
}

func readCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func readOptionalCell(cells []string, colMap map[string]int, key string) string {
	idx, ok := colMap[key]
	if !ok {
		return ""
	}
	return readCell(cells, idx)
}

// parseFloat accepts "4,675", "4.675,50" and "125.000 đ" style cells. The
// separator that comes last is the decimal point unless it is the only
// separator kind and is followed by exactly three digits.
func parseFloat(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	value = strings.TrimSuffix(value, "đ")
	value = strings.TrimSuffix(strings.TrimSpace(value), "VND")
	value = strings.ReplaceAll(value, " ", "")
	value = normalizeSeparators(value)
	if value == "" {
		return 0, fmt.Errorf("value is empty")
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	return parsed, nil
}

func normalizeSeparators(value string) string {
	lastDot := strings.LastIndexByte(value, '.')
	lastComma := strings.LastIndexByte(value, ',')
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			value = strings.ReplaceAll(value, ".", "")
			return strings.Replace(value, ",", ".", 1)
		}
		return strings.ReplaceAll(value, ",", "")
	case lastComma >= 0:
		if strings.Count(value, ",") > 1 || isThousands(value, ',') {
			return strings.ReplaceAll(value, ",", "")
		}
		return strings.Replace(value, ",", ".", 1)
	case lastDot >= 0:
		if strings.Count(value, ".") > 1 || isThousands(value, '.') {
			return strings.ReplaceAll(value, ".", "")
		}
	}
	return value
}

func isThousands(value string, sep byte) bool {
	i := strings.IndexByte(value, sep)
	return i > 0 && len(value)-i-1 == 3
}
