package sheet

import (
	"strconv"
	"time"
)

// Kind tags the type held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindTime
)

const timeLayout = "2006-01-02 15:04:05"

// Value is a single spreadsheet cell.
type Value struct {
	Kind   Kind
	Text   string
	Number float64
	Time   time.Time
	// Naive reports that Time carries no real zone and its wall clock
	// should be read as-is. Spreadsheet dates are always naive.
	Naive bool
}

// StringValue wraps s as a cell value.
func StringValue(s string) Value {
	return Value{Kind: KindString, Text: s}
}

// NumberValue wraps n as a cell value.
func NumberValue(n float64) Value {
	return Value{Kind: KindNumber, Number: n}
}

// TimeValue wraps t as a cell value. naive marks t's zone as meaningless.
func TimeValue(t time.Time, naive bool) Value {
	return Value{Kind: KindTime, Time: t, Naive: naive}
}

func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindTime:
		return v.Time.Format(timeLayout)
	default:
		return v.Text
	}
}

// IsBlank reports whether the cell holds nothing.
func (v Value) IsBlank() bool {
	return v.Kind == KindString && v.Text == ""
}

// Row maps normalized column names to cell values, in column order.
type Row struct {
	keys   []string
	values map[string]Value
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{values: make(map[string]Value)}
}

// Set stores v under key. A key that is already present keeps its position.
func (r *Row) Set(key string, v Value) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value stored under key.
func (r *Row) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the column names in order.
func (r *Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r *Row) Len() int {
	return len(r.keys)
}

func (r *Row) isBlank() bool {
	for _, v := range r.values {
		if !v.IsBlank() {
			return false
		}
	}
	return true
}
