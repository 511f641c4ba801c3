package sheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Built-in number format IDs that render a date or a time.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// workbook wraps an open excelize file while its rows are converted.
type workbook struct {
	file       *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func (l *Loader) loadWorkbook(path string) ([]*Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet, err := l.pickSheet(f)
	if err != nil {
		return nil, err
	}

	wb := &workbook{file: f, sheet: sheet, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	var header []string
	if len(raw) > 0 {
		header = raw[0]
	}
	headers, err := normalizeHeaders(header)
	if err != nil {
		return nil, err
	}

	var rows []*Row
	for i := 1; i < len(raw); i++ {
		cells := raw[i]
		sheetRow := i + 1

		var cellErr error
		row := buildRow(headers, func(col int) Value {
			if col >= len(cells) || cellErr != nil {
				return StringValue("")
			}
			v, err := wb.cellValue(col+1, sheetRow, cells[col])
			if err != nil {
				cellErr = err
			}
			return v
		})
		if cellErr != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", sheetRow, cellErr)
		}
		if row.isBlank() {
			l.logger.Debug("Skipping blank row", "sheet", sheet, "row", sheetRow)
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (l *Loader) pickSheet(f *excelize.File) (string, error) {
	if l.sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return "", fmt.Errorf("workbook has no sheets")
		}
		return sheets[0], nil
	}
	idx, err := f.GetSheetIndex(l.sheet)
	if err != nil {
		return "", fmt.Errorf("invalid sheet name %q: %w", l.sheet, err)
	}
	if idx < 0 {
		return "", fmt.Errorf("no sheet named %q in workbook", l.sheet)
	}
	return l.sheet, nil
}

// cellValue converts the raw text of a cell into a typed Value.
// Numbers shown with a date format become naive times.
func (wb *workbook) cellValue(col, row int, raw string) (Value, error) {
	if raw == "" {
		return StringValue(""), nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return Value{}, err
	}

	typ, err := wb.file.GetCellType(wb.sheet, cell)
	if err != nil {
		return Value{}, err
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return StringValue(raw), nil
	case excelize.CellTypeBool:
		if raw == "1" {
			return StringValue("TRUE"), nil
		}
		return StringValue("FALSE"), nil
	case excelize.CellTypeDate:
		if t, ok := parseISODate(raw); ok {
			return TimeValue(t, true), nil
		}
		return StringValue(raw), nil
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return StringValue(raw), nil
	}

	isDate, err := wb.hasDateFormat(cell)
	if err != nil {
		return Value{}, err
	}
	if isDate {
		t, err := excelize.ExcelDateToTime(n, wb.date1904)
		if err != nil {
			return Value{}, fmt.Errorf("cell %s: %w", cell, err)
		}
		return TimeValue(t, true), nil
	}
	return NumberValue(n), nil
}

func (wb *workbook) hasDateFormat(cell string) (bool, error) {
	styleID, err := wb.file.GetCellStyle(wb.sheet, cell)
	if err != nil {
		return false, err
	}
	if isDate, ok := wb.dateStyles[styleID]; ok {
		return isDate, nil
	}

	style, err := wb.file.GetStyle(styleID)
	if err != nil {
		return false, err
	}
	isDate := builtinDateFormats[style.NumFmt]
	if style.CustomNumFmt != nil {
		isDate = isDateFormatCode(*style.CustomNumFmt)
	}
	wb.dateStyles[styleID] = isDate
	return isDate, nil
}

// isDateFormatCode reports whether a custom number format renders date or
// time parts. Quoted literals, escapes and bracketed sections are ignored.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket, escaped := false, false, false
	for _, r := range code {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(strings.ToLower(b.String()), "ymdhs")
}

func parseISODate(raw string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSuffix(raw, "Z")); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
