package transform

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Clock is a time of day.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On returns the instant at clock c on the calendar day of date, in loc.
// Seconds are always zero.
func (c Clock) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, loc)
}

// DateParser turns free-form cell text into dates and clock times.
type DateParser interface {
	// ParseDate parses text as a date. Text without a zone is read in loc.
	ParseDate(text string, loc *time.Location) (time.Time, error)
	// ParseClock parses text as a time of day, ignoring any date part.
	ParseClock(text string) (Clock, error)
}

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04PM",
	"3:04 PM",
	"3:04:05PM",
	"3:04:05 PM",
	"3PM",
	"3 PM",
	"15.04",
	"3.04PM",
	"3.04 PM",
	"15H04",
}

// LenientParser is the DateParser used by the command line tool.
type LenientParser struct{}

var (
	leadingWeekday = regexp.MustCompile(`(?i)^(mon|tue|wed|thu|fri|sat|sun)[a-z]*\.?,?\s+`)
	dottedDate     = regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.(\d{2}|\d{4})$`)
	shortAMPM      = regexp.MustCompile(`^(.*\d)\s*([AP])$`)
	datePart       = regexp.MustCompile(`(?i)\d[-/.]\d{1,2}[-/.]\d|\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`)
)

// ParseDate accepts any layout dateparse recognizes. Day and month are
// swapped when the first reading is impossible, so 15/03/2024 works.
// A leading weekday is ignored and dotted dates that are not valid
// month-first are read day-first (15.03.2024).
func (p LenientParser) ParseDate(text string, loc *time.Location) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	t, err := dateparse.ParseIn(text, loc, dateparse.RetryAmbiguousDateWithSwap(true))
	if err == nil {
		return t, nil
	}

	if rest := leadingWeekday.ReplaceAllString(text, ""); rest != text && rest != "" {
		return p.ParseDate(rest, loc)
	}

	if m := dottedDate.FindStringSubmatch(text); m != nil {
		layout := "2.1.2006"
		if len(m[1]) == 2 {
			layout = "2.1.06"
		}
		if t, derr := time.ParseInLocation(layout, text, loc); derr == nil {
			return t, nil
		}
	}

	return time.Time{}, err
}

// ParseClock accepts 24-hour and 12-hour clock times (a and p are short for
// AM and PM), the words noon and midnight, and full timestamps whose date
// part is dropped.
func (LenientParser) ParseClock(text string) (Clock, error) {
	norm := strings.ToUpper(strings.TrimSpace(text))
	norm = strings.NewReplacer("A.M.", "AM", "P.M.", "PM").Replace(norm)
	if norm == "" {
		return Clock{}, fmt.Errorf("empty time")
	}
	norm = shortAMPM.ReplaceAllString(norm, "$1 ${2}M")

	switch norm {
	case "NOON":
		return Clock{Hour: 12}, nil
	case "MIDNIGHT":
		return Clock{}, nil
	}

	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, norm); err == nil {
			return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}

	// dateparse fills a missing date with midnight, so only full timestamps
	// are handed to it.
	if !datePart.MatchString(text) {
		return Clock{}, fmt.Errorf("unrecognized time %q", text)
	}
	t, err := dateparse.ParseAny(text)
	if err != nil {
		return Clock{}, fmt.Errorf("unrecognized time %q", text)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}
