// Package invite renders meeting confirmations as iCalendar invitations.
package invite

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/felixgeelhaar/huddle/internal/notifications/domain"
)

// ContentType is the MIME type of an encoded invitation.
const ContentType = "text/calendar; charset=utf-8; method=REQUEST"

// PropXHuddle marks events created by huddle.
const PropXHuddle = "X-HUDDLE"

const productID = "-//Huddle//Meeting Scheduler//EN"

// Build converts a confirmation into a calendar with one VEVENT.
// The event UID is the meeting id so repeated deliveries update in place.
func Build(c domain.Confirmation, organizer string, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropMethod, "REQUEST")

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, UID(c))
	event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, c.StartsAt.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, c.EndsAt().UTC())
	event.Props.SetText(ical.PropSummary, c.Title)
	event.Props.SetText(ical.PropDescription, strings.TrimSpace(c.Body()))
	event.Props.SetText(ical.PropStatus, "CONFIRMED")

	if organizer != "" {
		prop := ical.NewProp(ical.PropOrganizer)
		prop.Value = "mailto:" + organizer
		event.Props.Set(prop)
	}
	for _, r := range c.Recipients {
		prop := ical.NewProp(ical.PropAttendee)
		prop.Value = "mailto:" + r.Email
		if r.Name != "" {
			prop.Params.Set(ical.ParamCommonName, r.Name)
		}
		prop.Params.Set(ical.ParamRole, "REQ-PARTICIPANT")
		event.Props.Add(prop)
	}

	marker := ical.NewProp(PropXHuddle)
	marker.Value = "1"
	event.Props.Set(marker)

	cal.Children = append(cal.Children, event.Component)
	return cal
}

// UID is the stable event identifier for a meeting.
func UID(c domain.Confirmation) string {
	return c.MeetingID.String() + "@huddle"
}

// Encode writes cal to w.
func Encode(w io.Writer, cal *ical.Calendar) error {
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode invitation: %w", err)
	}
	return nil
}

// Render builds and encodes the invitation for c.
func Render(c domain.Confirmation, organizer string, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, Build(c, organizer, now)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IsHuddleEvent reports whether cal carries a huddle-created VEVENT.
func IsHuddleEvent(cal *ical.Calendar) bool {
	if cal == nil {
		return false
	}
	for _, child := range cal.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		if prop := child.Props.Get(PropXHuddle); prop != nil && prop.Value == "1" {
			return true
		}
	}
	return false
}
