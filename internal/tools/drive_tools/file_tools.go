package drive_tools

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gapidemo/internal/drive"
	"github.com/teemow/gapidemo/internal/instrumentation"
	"github.com/teemow/gapidemo/internal/logging"
	"github.com/teemow/gapidemo/internal/mimemail"
	"github.com/teemow/gapidemo/internal/server"
	"github.com/teemow/gapidemo/internal/tools/batch"
	"github.com/teemow/gapidemo/internal/tools/common"
)

// registerFileTools registers the tools that change Drive content.
func registerFileTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	uploadFileTool := mcp.NewTool("drive_upload_file",
		mcp.WithDescription("Upload a file to Google Drive from base64 content"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Base64 encoded file content"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the file in Drive"),
		),
		mcp.WithString("mimeType",
			mcp.Description("The MIME type of the file (detected from the name and content when omitted)"),
		),
		mcp.WithString("parentFolders",
			mcp.Description("Comma-separated list of parent folder IDs where the file should be placed"),
		),
		mcp.WithString("description",
			mcp.Description("A short description of the file"),
		),
	)
	s.AddTool(uploadFileTool, common.InstrumentedToolHandlerWithService(
		"drive_upload_file", instrumentation.ServiceDrive, instrumentation.OperationUpload, false, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUploadFile(ctx, request, sc)
		}))

	deleteFilesTool := mcp.NewTool("drive_delete_files",
		mcp.WithDescription("Delete one or more files from Google Drive. This permanently deletes the files, bypassing the trash."),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("fileIds",
			mcp.Required(),
			mcp.Description("A file ID, or a JSON array of file IDs"),
		),
	)
	s.AddTool(deleteFilesTool, common.InstrumentedToolHandlerWithService(
		"drive_delete_files", instrumentation.ServiceDrive, instrumentation.OperationDelete, false, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteFiles(ctx, request, sc)
		}))

	return nil
}

// uploadFromArgs returns the file described by the upload arguments.
func uploadFromArgs(args map[string]interface{}) (*mimemail.Attachment, error) {
	if err := common.RejectPathArg(args, "path", "content"); err != nil {
		return nil, err
	}

	encoded, err := common.RequiredStringArg(args, "content")
	if err != nil {
		return nil, err
	}
	name, err := common.RequiredStringArg(args, "name")
	if err != nil {
		return nil, err
	}
	mimeType := common.StringArg(args, "mimeType")
	content, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("content is not valid base64: %w", err)
	}
	if mimeType == "" {
		mimeType = mimemail.DetectMimeType(name, content)
	}
	return &mimemail.Attachment{Name: name, MimeType: mimeType, Content: content}, nil
}

func handleUploadFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	file, err := uploadFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := sc.DriveClientForAccount(ctx, account)
	if err != nil {
		return common.ClientError(sc, "Drive", account, err), nil
	}

	info, err := client.UploadFile(ctx, file.Name, bytes.NewReader(file.Content), &drive.UploadOptions{
		ParentFolders: common.StringListArg(args, "parentFolders"),
		Description:   common.StringArg(args, "description"),
		MimeType:      file.MimeType,
	})
	if err != nil {
		return common.APIError("upload file", err), nil
	}

	logging.WithOperation(sc.Logger(), "drive.upload").Info("file uploaded",
		logging.Account(account),
		logging.FileID(info.ID),
	)
	return common.JSONResult(newFileView(info))
}

func handleDeleteFiles(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	fileIDs, err := batch.ParseStringOrArray(args["fileIds"], "fileIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := sc.DriveClientForAccount(ctx, account)
	if err != nil {
		return common.ClientError(sc, "Drive", account, err), nil
	}

	results := batch.ProcessBatch(ctx, fileIDs, batch.DefaultConcurrency, func(ctx context.Context, id string) (string, error) {
		if err := client.DeleteFile(ctx, id); err != nil {
			return "", err
		}
		return "deleted", nil
	})

	summary := batch.Summarize(results)
	logging.WithOperation(sc.Logger(), "drive.delete").Info("files deleted",
		logging.Account(account),
		slog.Int("deleted", summary.Successful),
		slog.Int("failed", summary.Failed),
	)
	if summary.Successful == 0 {
		return mcp.NewToolResultError(batch.FormatResults(results)), nil
	}
	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}
