package calendar_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gapidemo/internal/calendar"
	"github.com/teemow/gapidemo/internal/instrumentation"
	"github.com/teemow/gapidemo/internal/server"
	"github.com/teemow/gapidemo/internal/tools/common"
)

const (
	accountDescription    = "Account name (default: 'default'). Used to manage multiple Google accounts."
	calendarIDDescription = "Calendar ID (default: 'primary')"
)

// RegisterCalendarTools registers all calendar-related tools with the MCP server.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listEventsTool := mcp.NewTool("calendar_list_events",
		mcp.WithDescription("List upcoming calendar events ordered by start time"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("calendarId",
			mcp.Description(calendarIDDescription),
		),
		mcp.WithString("timeMin",
			mcp.Description("Start of the range (RFC3339, default: now)"),
		),
		mcp.WithString("timeMax",
			mcp.Description("End of the range (RFC3339)"),
		),
		mcp.WithString("query",
			mcp.Description("Free text search in event fields"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of events to return (default: 25)"),
		),
	)
	s.AddTool(listEventsTool, common.InstrumentedToolHandlerWithService(
		"calendar_list_events", instrumentation.ServiceCalendar, instrumentation.OperationList, true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	if !readOnly {
		if err := registerSchedulingTools(s, sc); err != nil {
			return fmt.Errorf("failed to register scheduling tools: %w", err)
		}
	}

	return nil
}

func parseTimeArg(args map[string]interface{}, name string) (time.Time, error) {
	v := common.StringArg(args, name)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q, expected RFC3339 (e.g., 2025-01-01T09:00:00Z)", name, v)
	}
	return t, nil
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	timeMin, err := parseTimeArg(args, "timeMin")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeMax, err := parseTimeArg(args, "timeMax")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !timeMin.IsZero() && !timeMax.IsZero() && !timeMax.After(timeMin) {
		return mcp.NewToolResultError("timeMax must be after timeMin"), nil
	}

	client, err := sc.CalendarClientForAccount(ctx, account)
	if err != nil {
		return common.ClientError(sc, "Calendar", account, err), nil
	}

	events, err := client.ListEvents(ctx, common.StringArg(args, "calendarId"), calendar.ListOptions{
		TimeMin:    timeMin,
		TimeMax:    timeMax,
		Query:      common.StringArg(args, "query"),
		MaxResults: common.IntArg(args, "maxResults", calendar.DefaultMaxResults),
	})
	if err != nil {
		return common.APIError("list events", err), nil
	}

	if len(events) == 0 {
		return mcp.NewToolResultText("No events found."), nil
	}
	return common.JSONResult(map[string]interface{}{
		"count":  len(events),
		"events": events,
	})
}
