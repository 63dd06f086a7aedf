package gmail_tools

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gapidemo/internal/instrumentation"
	"github.com/teemow/gapidemo/internal/logging"
	"github.com/teemow/gapidemo/internal/mimemail"
	"github.com/teemow/gapidemo/internal/server"
	"github.com/teemow/gapidemo/internal/tools/common"
)

// RegisterEmailTools registers the compose and send tools with the MCP server.
func RegisterEmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	previewTool := mcp.NewTool("gmail_compose_preview",
		draftOptions("Build the MIME message for an email without sending it. Returns the message and the base64url payload Gmail would receive.")...,
	)
	s.AddTool(previewTool, common.InstrumentedToolHandler("gmail_compose_preview", true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleComposePreview(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	sendEmailTool := mcp.NewTool("gmail_send_email",
		draftOptions("Send an email through Gmail, optionally with one attachment")...,
	)
	s.AddTool(sendEmailTool, common.InstrumentedToolHandlerWithService(
		"gmail_send_email", instrumentation.ServiceGmail, instrumentation.OperationSend, false, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendEmail(ctx, request, sc)
		}))

	return nil
}

func draftOptions(description string) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Plain text email body"),
		),
		mcp.WithString("attachmentContent",
			mcp.Description("Base64 encoded content of the file to attach"),
		),
		mcp.WithString("attachmentName",
			mcp.Description("File name of attachmentContent"),
		),
		mcp.WithString("attachmentMimeType",
			mcp.Description("MIME type of attachmentContent (detected from the name when omitted)"),
		),
	}
}

// draftFromArgs builds the draft of a tool call. Field values are taken as
// given; the composer decides whether they are missing. The text fields are
// validated before the attachment is decoded.
func draftFromArgs(args map[string]interface{}) (mimemail.Draft, error) {
	to, _ := args["to"].(string)
	subject, _ := args["subject"].(string)
	body, _ := args["body"].(string)
	draft := mimemail.Draft{To: to, Subject: subject, Body: body}
	if err := draft.Validate(); err != nil {
		return draft, err
	}

	att, err := attachmentFromArgs(args)
	if err != nil {
		return draft, err
	}
	draft.Attachment = att
	return draft, nil
}

func attachmentFromArgs(args map[string]interface{}) (*mimemail.Attachment, error) {
	if err := common.RejectPathArg(args, "attachmentPath", "attachmentContent"); err != nil {
		return nil, err
	}

	encoded := common.StringArg(args, "attachmentContent")
	if encoded == "" {
		return nil, nil
	}

	name := common.StringArg(args, "attachmentName")
	if name == "" {
		return nil, fmt.Errorf("attachmentName is required with attachmentContent")
	}
	content, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("attachmentContent is not valid base64: %w", err)
	}
	if len(content) > mimemail.MaxAttachmentSize {
		return nil, fmt.Errorf("attachment size %d exceeds maximum size %d", len(content), mimemail.MaxAttachmentSize)
	}

	mimeType := common.StringArg(args, "attachmentMimeType")
	if mimeType == "" {
		mimeType = mimemail.DetectMimeType(name, content)
	}
	return &mimemail.Attachment{Name: name, MimeType: mimeType, Content: content}, nil
}

func messageKind(d mimemail.Draft) string {
	if d.Attachment != nil {
		return instrumentation.MessageKindMultipart
	}
	return instrumentation.MessageKindPlain
}

// composeError renders a draft or composer failure. A missing field asks for
// the form to be completed.
func composeError(err error) *mcp.CallToolResult {
	var missing *mimemail.MissingFieldError
	if errors.As(err, &missing) {
		return mcp.NewToolResultError(fmt.Sprintf("Please fill in all required fields (to, subject, body): %s is missing", missing.Field))
	}
	return mcp.NewToolResultError(fmt.Sprintf("Failed to compose email: %v", err))
}

func handleComposePreview(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	draft, err := draftFromArgs(request.GetArguments())
	if err != nil {
		sc.Metrics().RecordEmailComposed(ctx, messageKind(draft), instrumentation.StatusError)
		return composeError(err), nil
	}

	msg, err := mimemail.Compose(draft)
	sc.Metrics().RecordEmailComposed(ctx, messageKind(draft), instrumentation.StatusOf(err))
	if err != nil {
		return composeError(err), nil
	}

	return common.JSONResult(map[string]interface{}{
		"message":   msg,
		"payload":   mimemail.NewPayload(mimemail.Encode(msg)),
		"multipart": draft.Attachment != nil,
	})
}

func handleSendEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	draft, err := draftFromArgs(args)
	if err != nil {
		sc.Metrics().RecordEmailComposed(ctx, messageKind(draft), instrumentation.StatusError)
		return composeError(err), nil
	}

	client, err := sc.GmailClientForAccount(ctx, account)
	if err != nil {
		return common.ClientError(sc, "Gmail", account, err), nil
	}

	raw, err := client.ComposeRaw(draft)
	sc.Metrics().RecordEmailComposed(ctx, messageKind(draft), instrumentation.StatusOf(err))
	if err != nil {
		return composeError(err), nil
	}

	sent, err := client.SendRaw(ctx, raw)
	if err != nil {
		return common.APIError("send email", err), nil
	}

	logging.WithOperation(sc.Logger(), "gmail.send").Info("email sent",
		logging.Account(account),
		logging.Recipient(draft.To),
		slog.Bool("multipart", draft.Attachment != nil),
	)

	result := fmt.Sprintf("Email sent successfully!\nMessage ID: %s\nTo: %s\nSubject: %s", sent.ID, draft.To, draft.Subject)
	if draft.Attachment != nil {
		result += fmt.Sprintf("\nAttachment: %s (%s)", draft.Attachment.Name, draft.Attachment.MimeType)
	}
	return mcp.NewToolResultText(result), nil
}
