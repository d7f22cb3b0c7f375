package maintenance

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/iudanet/atmtrack/pkg/api"
)

// SheetExtensions расширения таблиц, которые умеет читать ReadDeviceSheet
var SheetExtensions = []string{".xlsx", ".xlsm"}

// ErrUnsupportedSheet файл не является книгой Excel
var ErrUnsupportedSheet = fmt.Errorf("invalid file extension, allowed: %s", strings.Join(SheetExtensions, ", "))

// sheetColumns индексы колонок строки устройства, -1 если колонки нет
type sheetColumns struct {
	interactionID int
	costCenter    int
	problemType   int
	problemDate   int
	city          int
	region        int
}

// Без заголовка: Interaction ID, GFM Cost Center, GFM Problem Type, GFM Problem Date, City, Status
var positionalColumns = sheetColumns{
	interactionID: 0,
	costCenter:    1,
	problemType:   2,
	problemDate:   3,
	city:          4,
	region:        5,
}

// ReadDeviceSheet читает список устройств с активного листа книги.
// Пустые строки пропускаются. Первая строка считается заголовком, если похожа на него,
// и тогда колонки сопоставляются по названиям.
func ReadDeviceSheet(path string) ([]api.DeviceRow, error) {
	if !slices.Contains(SheetExtensions, strings.ToLower(filepath.Ext(path))) {
		return nil, ErrUnsupportedSheet
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		return nil, errors.New("workbook contains no worksheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return parseDeviceRows(rows)
}

func parseDeviceRows(rows [][]string) ([]api.DeviceRow, error) {
	cols := positionalColumns
	result := make([]api.DeviceRow, 0, len(rows))
	first := true

	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		if first {
			first = false
			if isHeaderRow(row) {
				cols = headerColumns(row)
				continue
			}
		}

		result = append(result, api.DeviceRow{
			InteractionID:  cell(row, cols.interactionID),
			GFMCostCenter:  cell(row, cols.costCenter),
			GFMProblemType: cell(row, cols.problemType),
			GFMProblemDate: cell(row, cols.problemDate),
			City:           cell(row, cols.city),
			Region:         cell(row, cols.region),
		})
	}

	if len(result) == 0 {
		return nil, ErrNoRows
	}
	return result, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func isHeaderRow(row []string) bool {
	firstCell := strings.ToLower(cell(row, 0))
	if strings.Contains(firstCell, "interaction") || strings.Contains(firstCell, "id") || strings.Contains(firstCell, "gfm") {
		return true
	}
	return slices.ContainsFunc(row, func(v string) bool {
		return strings.Contains(strings.ToLower(v), "interaction")
	})
}

// headerColumns сопоставляет колонки по названиям заголовка
func headerColumns(header []string) sheetColumns {
	cols := sheetColumns{-1, -1, -1, -1, -1, -1}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		switch {
		case strings.Contains(name, "interaction"):
			cols.interactionID = i
		case strings.Contains(name, "cost"):
			cols.costCenter = i
		case strings.Contains(name, "type"):
			cols.problemType = i
		case strings.Contains(name, "date"):
			cols.problemDate = i
		case strings.Contains(name, "city"):
			cols.city = i
		case strings.Contains(name, "region"), strings.Contains(name, "status"):
			cols.region = i
		}
	}
	if cols.interactionID < 0 {
		cols.interactionID = 0
	}
	return cols
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
