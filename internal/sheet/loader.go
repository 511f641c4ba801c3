package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// RequiredColumns must appear in the header row, compared after normalization.
var RequiredColumns = []string{"title", "date", "time", "venue"}

// ValidationError reports required columns absent from the header row.
type ValidationError struct {
	Missing []string // sorted
}

func (e *ValidationError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// NormalizeHeader trims and lowercases a column name.
func NormalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidateColumns checks normalized headers against RequiredColumns.
func ValidateColumns(headers []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return &ValidationError{Missing: missing}
}

// Loader reads event rows out of a spreadsheet file.
type Loader struct {
	logger *slog.Logger
	sheet  string
}

// NewLoader creates a Loader. sheetName selects the worksheet of a workbook;
// an empty name selects the first one. It is ignored for CSV input.
func NewLoader(logger *slog.Logger, sheetName string) *Loader {
	return &Loader{logger: logger, sheet: sheetName}
}

// Load reads every non-blank row of the file at path.
// Column names are normalized and validated before any row is built.
func (l *Loader) Load(path string) ([]*Row, error) {
	ext := strings.ToLower(filepath.Ext(path))
	l.logger.Debug("Loading spreadsheet", "path", path, "format", ext)

	var (
		rows []*Row
		err  error
	)
	switch ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		rows, err = l.loadWorkbook(path)
	case ".csv":
		rows, err = l.loadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported spreadsheet format %q", ext)
	}
	if err != nil {
		return nil, err
	}

	l.logger.Info("Loaded spreadsheet", "path", path, "rows", len(rows))
	return rows, nil
}

// normalizeHeaders returns the normalized header row, failing on missing columns.
func normalizeHeaders(raw []string) ([]string, error) {
	headers := make([]string, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		headers[i] = NormalizeHeader(h)
	}
	if err := ValidateColumns(headers); err != nil {
		return nil, err
	}
	return headers, nil
}

// buildRow pairs headers with cells. Missing trailing cells are blank.
// Columns without a header are dropped.
func buildRow(headers []string, cell func(col int) Value) *Row {
	row := NewRow()
	for i, h := range headers {
		if h == "" {
			continue
		}
		row.Set(h, cell(i))
	}
	return row
}

func (l *Loader) loadCSV(path string) ([]*Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		header = nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	headers, err := normalizeHeaders(header)
	if err != nil {
		return nil, err
	}

	var rows []*Row
	for line := 2; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		row := buildRow(headers, func(col int) Value {
			if col < len(record) {
				return StringValue(record[col])
			}
			return StringValue("")
		})
		if row.isBlank() {
			l.logger.Debug("Skipping blank row", "line", line)
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
