package transform

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"sheet2ics/internal/models"
	"sheet2ics/internal/sheet"
)

const (
	defaultTitle      = "Event"
	descriptionHeader = "Event details from spreadsheet:"
	fallbackDuration  = time.Hour
)

var rangeSeparator = regexp.MustCompile(`\s*[-–]\s*`)

// DateParseError reports a date cell that could not be read as a date.
type DateParseError struct {
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("invalid date %q: %v", e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }

// TimeRangeError reports a time cell that is not "<start> - <end>".
type TimeRangeError struct {
	Value string
	Err   error
}

func (e *TimeRangeError) Error() string {
	return fmt.Sprintf("invalid time range %q: %v", e.Value, e.Err)
}

func (e *TimeRangeError) Unwrap() error { return e.Err }

// Transformer converts spreadsheet rows into events.
type Transformer struct {
	location     *time.Location
	alertMinutes int
	parser       DateParser
}

// New creates a Transformer placing events in loc. The sign of alertMinutes
// is ignored. A nil parser selects LenientParser.
func New(loc *time.Location, alertMinutes int, parser DateParser) *Transformer {
	if loc == nil {
		loc = time.UTC
	}
	if parser == nil {
		parser = LenientParser{}
	}
	if alertMinutes < 0 {
		alertMinutes = -alertMinutes
	}
	return &Transformer{location: loc, alertMinutes: alertMinutes, parser: parser}
}

// Transform builds the event for row. index is the 1-based row position.
func (t *Transformer) Transform(row *sheet.Row, index int) (*models.Event, error) {
	title := strings.TrimSpace(field(row, "title"))
	if title == "" {
		title = defaultTitle
	}

	date, err := t.parseDate(row)
	if err != nil {
		return nil, err
	}

	start, end, err := t.parseRange(field(row, "time"))
	if err != nil {
		return nil, err
	}

	startTime := start.On(date, t.location)
	endTime := end.On(date, t.location)
	if !endTime.After(startTime) {
		endTime = startTime.Add(fallbackDuration)
	}

	return &models.Event{
		Index:        index,
		UID:          uuid.New().String(),
		Title:        title,
		Description:  Describe(row),
		StartTime:    startTime,
		EndTime:      endTime,
		Location:     strings.TrimSpace(field(row, "venue")),
		AlertMinutes: t.alertMinutes,
	}, nil
}

// parseDate returns the row's date expressed in the configured location.
func (t *Transformer) parseDate(row *sheet.Row) (time.Time, error) {
	v, _ := row.Get("date")
	if v.Kind == sheet.KindTime {
		if v.Naive {
			y, m, d := v.Time.Date()
			hh, mm, ss := v.Time.Clock()
			return time.Date(y, m, d, hh, mm, ss, v.Time.Nanosecond(), t.location), nil
		}
		return v.Time.In(t.location), nil
	}

	text := v.String()
	parsed, err := t.parser.ParseDate(text, t.location)
	if err != nil {
		return time.Time{}, &DateParseError{Value: text, Err: err}
	}
	return parsed.In(t.location), nil
}

// parseRange splits "9:00 AM - 10:00 AM" into its two clock times.
func (t *Transformer) parseRange(text string) (Clock, Clock, error) {
	parts := rangeSeparator.Split(strings.TrimSpace(text), -1)
	if len(parts) != 2 {
		return Clock{}, Clock{}, &TimeRangeError{
			Value: text,
			Err:   fmt.Errorf("want a start and end time separated by a hyphen, e.g. '9:00 AM - 10:00 AM'"),
		}
	}

	start, err := t.parser.ParseClock(parts[0])
	if err != nil {
		return Clock{}, Clock{}, &TimeRangeError{Value: text, Err: err}
	}
	end, err := t.parser.ParseClock(parts[1])
	if err != nil {
		return Clock{}, Clock{}, &TimeRangeError{Value: text, Err: err}
	}
	return start, end, nil
}

// Describe renders every field of row, in column order, under a fixed header.
func Describe(row *sheet.Row) string {
	lines := make([]string, 0, row.Len()+1)
	lines = append(lines, descriptionHeader)
	for _, key := range row.Keys() {
		v, _ := row.Get(key)
		lines = append(lines, fmt.Sprintf("- %s: %s", key, v))
	}
	return strings.Join(lines, "\n")
}

func field(row *sheet.Row, key string) string {
	v, _ := row.Get(key)
	return v.String()
}
