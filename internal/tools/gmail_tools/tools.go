package gmail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gapidemo/internal/gmail"
	"github.com/teemow/gapidemo/internal/instrumentation"
	"github.com/teemow/gapidemo/internal/server"
	"github.com/teemow/gapidemo/internal/tools/common"
)

const accountDescription = "Account name (default: 'default'). Used to manage multiple Google accounts."

// RegisterGmailTools registers all Gmail-related tools with the MCP server.
// gmail_send_email is only registered when readOnly is false.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listMessagesTool := mcp.NewTool("gmail_list_messages",
		mcp.WithDescription("List the most recent Gmail messages with subject, sender and date"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of messages to return (default: 10, max: 100)"),
		),
		mcp.WithString("query",
			mcp.Description("Gmail search query (e.g., 'is:unread', 'from:user@example.com')"),
		),
	)
	s.AddTool(listMessagesTool, common.InstrumentedToolHandlerWithService(
		"gmail_list_messages", instrumentation.ServiceGmail, instrumentation.OperationList, true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListMessages(ctx, request, sc)
		}))

	getMessageTool := mcp.NewTool("gmail_get_message",
		mcp.WithDescription("Get the subject, sender, date and body of a Gmail message"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message to open"),
		),
	)
	s.AddTool(getMessageTool, common.InstrumentedToolHandlerWithService(
		"gmail_get_message", instrumentation.ServiceGmail, instrumentation.OperationGet, true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMessage(ctx, request, sc)
		}))

	if err := RegisterEmailTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register email tools: %w", err)
	}

	return nil
}

func handleListMessages(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	client, err := sc.GmailClientForAccount(ctx, account)
	if err != nil {
		return common.ClientError(sc, "Gmail", account, err), nil
	}

	messages, err := client.ListMessages(ctx, gmail.ListOptions{
		MaxResults: common.IntArg(args, "maxResults", gmail.DefaultMaxResults),
		Query:      common.StringArg(args, "query"),
	})
	if err != nil {
		return common.APIError("list messages", err), nil
	}

	if len(messages) == 0 {
		return mcp.NewToolResultText("No messages found."), nil
	}
	return common.JSONResult(map[string]interface{}{
		"count":    len(messages),
		"messages": messages,
	})
}

func handleGetMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	messageID, err := common.RequiredStringArg(args, "messageId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := sc.GmailClientForAccount(ctx, account)
	if err != nil {
		return common.ClientError(sc, "Gmail", account, err), nil
	}

	content, err := client.GetMessageContent(ctx, messageID)
	if err != nil {
		return common.APIError("get message", err), nil
	}
	content.Body = content.DisplayBody()
	return common.JSONResult(content)
}
