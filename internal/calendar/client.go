package calendar

import (
	"context"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/gapidemo/internal/google"
)

// PrimaryCalendarID addresses the authenticated user's main calendar.
const PrimaryCalendarID = "primary"

// DefaultMaxResults bounds ListEvents when ListOptions.MaxResults is unset.
const DefaultMaxResults = 25

// Client wraps the Google Calendar service
type Client struct {
	svc     *calendar.Service
	account string
	limiter *google.RateLimiter
}

// NewClient creates a Calendar client authenticated with cred.
func NewClient(ctx context.Context, cred *google.Credential, opts ...option.ClientOption) (*Client, error) {
	httpClient, err := cred.HTTPClient()
	if err != nil {
		return nil, fmt.Errorf("no valid Google credential: %w", err)
	}

	svc, err := calendar.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:     svc,
		account: cred.Account,
	}, nil
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// WithRateLimiter makes every API call wait on l.
func (c *Client) WithRateLimiter(l *google.RateLimiter) *Client {
	c.limiter = l
	return c
}

// CreateEvent creates a new calendar event
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*EventSummary, error) {
	if calendarID == "" {
		calendarID = PrimaryCalendarID
	}
	if input.TimeZone == "" {
		input.TimeZone = DefaultTimeZone
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
	}

	for _, email := range input.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", google.WrapError(c.limiter.Observe(err)))
	}

	summary := toEventSummary(created)
	return &summary, nil
}

// ListEvents lists single events of a calendar ordered by start time
func (c *Client) ListEvents(ctx context.Context, calendarID string, opts ListOptions) ([]EventSummary, error) {
	if calendarID == "" {
		calendarID = PrimaryCalendarID
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.TimeMin.IsZero() {
		opts.TimeMin = time.Now()
	}

	call := c.svc.Events.List(calendarID).
		Context(ctx).
		TimeMin(opts.TimeMin.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(opts.MaxResults)

	if !opts.TimeMax.IsZero() {
		call = call.TimeMax(opts.TimeMax.Format(time.RFC3339))
	}
	if opts.Query != "" {
		call = call.Q(opts.Query)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", google.WrapError(c.limiter.Observe(err)))
	}

	summaries := make([]EventSummary, 0, len(events.Items))
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}
	return summaries, nil
}

// DeleteEvent deletes a calendar event
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if eventID == "" {
		return fmt.Errorf("eventID is required")
	}
	if calendarID == "" {
		calendarID = PrimaryCalendarID
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event: %w", google.WrapError(c.limiter.Observe(err)))
	}
	return nil
}
