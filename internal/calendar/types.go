package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// EventInput represents the input for creating a calendar event
type EventInput struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []string
}

// EventSummary represents a simplified calendar event for listing
type EventSummary struct {
	ID          string         `json:"id"`
	Summary     string         `json:"summary"`
	Description string         `json:"description,omitempty"`
	Location    string         `json:"location,omitempty"`
	Start       time.Time      `json:"start"`
	End         time.Time      `json:"end"`
	Organizer   string         `json:"organizer,omitempty"`
	Status      string         `json:"status,omitempty"`
	HTMLLink    string         `json:"htmlLink,omitempty"`
	Attendees   []AttendeeInfo `json:"attendees,omitempty"`
}

// AttendeeInfo represents information about an event attendee
type AttendeeInfo struct {
	Email          string `json:"email"`
	ResponseStatus string `json:"responseStatus,omitempty"` // "needsAction", "declined", "tentative", "accepted"
}

// ListOptions narrows ListEvents
type ListOptions struct {
	TimeMin    time.Time
	TimeMax    time.Time
	Query      string
	MaxResults int64
}

// toEventSummary converts a Google Calendar event to an EventSummary
func toEventSummary(event *calendar.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}

	summary := EventSummary{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		Status:      event.Status,
		HTMLLink:    event.HtmlLink,
		Start:       parseEventTime(event.Start),
		End:         parseEventTime(event.End),
	}

	if event.Organizer != nil {
		summary.Organizer = event.Organizer.Email
	}

	for _, att := range event.Attendees {
		summary.Attendees = append(summary.Attendees, AttendeeInfo{
			Email:          att.Email,
			ResponseStatus: att.ResponseStatus,
		})
	}

	return summary
}

// parseEventTime reads either the timed or the all-day form of an event boundary.
func parseEventTime(dt *calendar.EventDateTime) time.Time {
	if dt == nil {
		return time.Time{}
	}
	if dt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, dt.DateTime); err == nil {
			return t
		}
	} else if dt.Date != "" {
		if t, err := time.Parse(dateLayout, dt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}
