package ics

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"

	"sheet2ics/internal/models"
)

const (
	ProductID        = "-//Excel to ICS Converter//EN"
	AlarmDescription = "Leave now to arrive on time."

	PropTravelAdvisory    = "X-APPLE-TRAVEL-ADVISORY-BEHAVIOR"
	PropTravelDuration    = "X-APPLE-TRAVEL-DURATION"
	PropLocalDefaultAlarm = "X-APPLE-LOCAL-DEFAULT-ALARM"
	PropDefaultAlarm      = "X-APPLE-DEFAULT-ALARM"
)

// Encode renders event as a calendar holding a single VEVENT with a
// travel-time VALARM.
func Encode(event *models.Event) ([]byte, error) {
	cal := NewCalendar(event, time.Now().UTC())

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode event to iCal format: %w", err)
	}
	return buf.Bytes(), nil
}

// NewCalendar builds the calendar object for event, stamped at now.
func NewCalendar(event *models.Event, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, ProductID)
	cal.Props.SetText(ical.PropVersion, "2.0")

	ve := toVEvent(event, now)
	ve.Children = append(ve.Children, toVAlarm(event))
	cal.Children = append(cal.Children, ve)
	return cal
}

// toVEvent converts an Event into a VEVENT component.
func toVEvent(event *models.Event, now time.Time) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, event.UID)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, now)
	ve.Props.SetText(ical.PropSummary, event.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStart, event.StartTime)
	ve.Props.SetDateTime(ical.PropDateTimeEnd, event.EndTime)
	if event.Location != "" {
		ve.Props.SetText(ical.PropLocation, event.Location)
	}
	ve.Props.SetText(ical.PropDescription, event.Description)
	ve.Props.SetText(ical.PropTransparency, "OPAQUE")

	// Apple Calendar computes travel time from the location when these are set.
	ve.Props.Set(rawProp(PropTravelAdvisory, ical.ValueDefault, "AUTOMATIC"))
	ve.Props.Set(rawProp(PropTravelDuration, ical.ValueDuration, "PT0M"))
	return ve
}

func toVAlarm(event *models.Event) *ical.Component {
	va := ical.NewComponent(ical.CompAlarm)
	va.Props.SetText(ical.PropAction, "DISPLAY")
	va.Props.SetText(ical.PropDescription, AlarmDescription)
	va.Props.Set(rawProp(ical.PropTrigger, ical.ValueDefault, Trigger(event.AlertMinutes)))
	va.Props.Set(rawProp(PropLocalDefaultAlarm, ical.ValueDefault, "TRUE"))
	va.Props.Set(rawProp(PropDefaultAlarm, ical.ValueDefault, "TRUE"))
	return va
}

// Trigger formats a lead time of minutes before the start as a negative
// RFC 5545 duration. The sign of minutes is ignored.
func Trigger(minutes int) string {
	if minutes < 0 {
		minutes = -minutes
	}
	if minutes == 0 {
		return "PT0S"
	}
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("-PT%dM", m)
	case m == 0:
		return fmt.Sprintf("-PT%dH", h)
	default:
		return fmt.Sprintf("-PT%dH%dM", h, m)
	}
}

func rawProp(name string, typ ical.ValueType, value string) *ical.Prop {
	p := ical.NewProp(name)
	if typ != ical.ValueDefault {
		p.SetValueType(typ)
	}
	p.Value = value
	return p
}
