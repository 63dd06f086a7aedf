// Package calendar schedules and lists meetings through the Google Calendar API.
//
// A ScheduleRequest holds the values of the scheduling form (title, date,
// start and end time, attendee emails). It converts into an EventInput in a
// fixed time zone, which Client.CreateEvent inserts into a calendar.
//
//	req := calendar.ScheduleRequest{
//	    Title:     "Sprint review",
//	    Date:      "2024-06-03",
//	    StartTime: "09:00",
//	    EndTime:   "10:00",
//	    Attendees: []string{"an@example.com"},
//	}
//	input, err := req.EventInput(calendar.DefaultTimeZone)
//	if err != nil {
//	    return err
//	}
//	event, err := client.CreateEvent(ctx, calendar.PrimaryCalendarID, input)
package calendar
