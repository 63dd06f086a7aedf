package calendar_tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gapidemo/internal/calendar"
	"github.com/teemow/gapidemo/internal/instrumentation"
	"github.com/teemow/gapidemo/internal/logging"
	"github.com/teemow/gapidemo/internal/server"
	"github.com/teemow/gapidemo/internal/tools/common"
)

// registerSchedulingTools registers the tools that change a calendar.
func registerSchedulingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	scheduleMeetingTool := mcp.NewTool("calendar_schedule_meeting",
		mcp.WithDescription("Schedule a meeting on a date between two times and invite attendees"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("calendarId",
			mcp.Description(calendarIDDescription),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Meeting title"),
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Meeting date (YYYY-MM-DD)"),
		),
		mcp.WithString("startTime",
			mcp.Required(),
			mcp.Description("Start time (HH:MM, 24-hour)"),
		),
		mcp.WithString("endTime",
			mcp.Required(),
			mcp.Description("End time (HH:MM, 24-hour)"),
		),
		mcp.WithString("attendees",
			mcp.Description("Comma-separated list of attendee email addresses"),
		),
		mcp.WithString("timeZone",
			mcp.Description("IANA time zone of the times (default from configuration)"),
		),
	)
	s.AddTool(scheduleMeetingTool, common.InstrumentedToolHandlerWithService(
		"calendar_schedule_meeting", instrumentation.ServiceCalendar, instrumentation.OperationCreate, false, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleScheduleMeeting(ctx, request, sc)
		}))

	deleteEventTool := mcp.NewTool("calendar_delete_event",
		mcp.WithDescription("Delete a calendar event"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("calendarId",
			mcp.Description(calendarIDDescription),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to delete"),
		),
	)
	s.AddTool(deleteEventTool, common.InstrumentedToolHandlerWithService(
		"calendar_delete_event", instrumentation.ServiceCalendar, instrumentation.OperationDelete, false, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEvent(ctx, request, sc)
		}))

	return nil
}

func handleScheduleMeeting(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	req := calendar.ScheduleRequest{
		Title:     common.StringArg(args, "title"),
		Date:      common.StringArg(args, "date"),
		StartTime: common.StringArg(args, "startTime"),
		EndTime:   common.StringArg(args, "endTime"),
		Attendees: common.StringListArg(args, "attendees"),
		TimeZone:  common.StringArg(args, "timeZone"),
	}
	input, err := req.EventInput(sc.Config().Calendar.TimeZone)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Please fill in the meeting form correctly: %v", err)), nil
	}

	client, err := sc.CalendarClientForAccount(ctx, account)
	if err != nil {
		return common.ClientError(sc, "Calendar", account, err), nil
	}

	event, err := client.CreateEvent(ctx, common.StringArg(args, "calendarId"), input)
	if err != nil {
		return common.APIError("schedule meeting", err), nil
	}

	logging.WithOperation(sc.Logger(), "calendar.schedule").Info("meeting scheduled",
		logging.Account(account),
		slog.Int("attendees", len(input.Attendees)),
	)

	result := fmt.Sprintf("Meeting scheduled successfully!\nEvent ID: %s\nTitle: %s\nStart: %s\nEnd: %s",
		event.ID, event.Summary, input.Start.Format(time.RFC3339), input.End.Format(time.RFC3339))
	if len(input.Attendees) > 0 {
		result += fmt.Sprintf("\nAttendees: %d", len(input.Attendees))
	}
	if event.HTMLLink != "" {
		result += "\nLink: " + event.HTMLLink
	}
	return mcp.NewToolResultText(result), nil
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	eventID, err := common.RequiredStringArg(args, "eventId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := sc.CalendarClientForAccount(ctx, account)
	if err != nil {
		return common.ClientError(sc, "Calendar", account, err), nil
	}

	if err := client.DeleteEvent(ctx, common.StringArg(args, "calendarId"), eventID); err != nil {
		return common.APIError("delete event", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Event %s deleted successfully", eventID)), nil
}
