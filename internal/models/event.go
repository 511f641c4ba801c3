package models

import "time"

// Event is one calendar event derived from a spreadsheet row.
// It is independent of the calendar wire format it is later encoded into.
type Event struct {
	Index        int       // 1-based position of the source row
	UID          string    // The iCalendar UID
	Title        string    // Summary of the event, never blank
	Description  string    // Rendering of every field of the source row
	StartTime    time.Time // Start of the event in the configured timezone
	EndTime      time.Time // End of the event, always after StartTime
	Location     string    // Venue, may be empty
	AlertMinutes int       // Lead time of the travel alert, never negative
}

// Duration returns how long the event lasts.
func (e *Event) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}
