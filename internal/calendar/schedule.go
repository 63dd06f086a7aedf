package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	// DefaultTimeZone is used when neither the request nor the caller names one.
	DefaultTimeZone = "Asia/Ho_Chi_Minh"

	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ErrEndBeforeStart is returned when a meeting does not end after it starts.
var ErrEndBeforeStart = errors.New("end time must be after start time")

// ScheduleRequest holds the values of the meeting form.
type ScheduleRequest struct {
	Title     string   `json:"title"`
	Date      string   `json:"date"`      // YYYY-MM-DD
	StartTime string   `json:"startTime"` // HH:MM
	EndTime   string   `json:"endTime"`   // HH:MM
	Attendees []string `json:"attendees,omitempty"`
	TimeZone  string   `json:"timeZone,omitempty"`
}

// Validate checks that every required field is present and well formed.
func (r ScheduleRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return fmt.Errorf("title is required")
	case r.Date == "":
		return fmt.Errorf("date is required")
	case r.StartTime == "":
		return fmt.Errorf("start time is required")
	case r.EndTime == "":
		return fmt.Errorf("end time is required")
	}

	if _, err := time.Parse(dateLayout, r.Date); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", r.Date)
	}
	start, err := time.Parse(timeLayout, r.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start time %q, expected HH:MM", r.StartTime)
	}
	end, err := time.Parse(timeLayout, r.EndTime)
	if err != nil {
		return fmt.Errorf("invalid end time %q, expected HH:MM", r.EndTime)
	}
	if !end.After(start) {
		return ErrEndBeforeStart
	}
	return nil
}

// EventInput converts the request into an event in the request's time zone,
// or defaultTZ when the request has none.
func (r ScheduleRequest) EventInput(defaultTZ string) (EventInput, error) {
	if err := r.Validate(); err != nil {
		return EventInput{}, err
	}

	tz := r.TimeZone
	if tz == "" {
		tz = defaultTZ
	}
	if tz == "" {
		tz = DefaultTimeZone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return EventInput{}, fmt.Errorf("unknown time zone %q: %w", tz, err)
	}

	start, err := time.ParseInLocation(dateLayout+" "+timeLayout, r.Date+" "+r.StartTime, loc)
	if err != nil {
		return EventInput{}, fmt.Errorf("invalid start: %w", err)
	}
	end, err := time.ParseInLocation(dateLayout+" "+timeLayout, r.Date+" "+r.EndTime, loc)
	if err != nil {
		return EventInput{}, fmt.Errorf("invalid end: %w", err)
	}

	return EventInput{
		Summary:   strings.TrimSpace(r.Title),
		Start:     start,
		End:       end,
		TimeZone:  tz,
		Attendees: DedupeAttendees(r.Attendees),
	}, nil
}

// DedupeAttendees trims the addresses, drops blanks and repeats, and keeps
// the first occurrence order.
func DedupeAttendees(emails []string) []string {
	seen := make(map[string]bool, len(emails))
	var out []string
	for _, e := range emails {
		e = strings.TrimSpace(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
