package drive_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gapidemo/internal/drive"
	"github.com/teemow/gapidemo/internal/instrumentation"
	"github.com/teemow/gapidemo/internal/server"
	"github.com/teemow/gapidemo/internal/tools/common"
)

const accountDescription = "Account name (default: 'default'). Used to manage multiple Google accounts."

const fileTypeDescription = "File type filter: all, pdf, image, doc, sheet, video, or a MIME type. A MIME type ending in '/' matches as a prefix."

// fileView is a search hit as the tools present it.
type fileView struct {
	*drive.FileInfo
	SizeLabel   string `json:"sizeLabel"`
	Category    string `json:"category"`
	PreviewLink string `json:"previewLink"`
}

func newFileView(f *drive.FileInfo) fileView {
	return fileView{
		FileInfo:    f,
		SizeLabel:   drive.FormatSize(f.Size),
		Category:    drive.Classify(f.MimeType),
		PreviewLink: drive.PreviewLink(f.ID),
	}
}

// RegisterDriveTools registers all Google Drive-related tools with the MCP server.
// Upload and delete are only registered when readOnly is false.
func RegisterDriveTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	searchFilesTool := mcp.NewTool("drive_search_files",
		mcp.WithDescription("Search Google Drive files by name keyword and file type. Trashed files are excluded."),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("keyword",
			mcp.Description("Text the file name must contain"),
		),
		mcp.WithString("fileType",
			mcp.Description(fileTypeDescription),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of files to return (default: 50, max: 1000)"),
		),
		mcp.WithString("orderBy",
			mcp.Description("Sort order (e.g., 'modifiedTime desc', 'name')"),
		),
		mcp.WithString("pageToken",
			mcp.Description("Page token for retrieving the next page of results"),
		),
	)
	s.AddTool(searchFilesTool, common.InstrumentedToolHandlerWithService(
		"drive_search_files", instrumentation.ServiceDrive, instrumentation.OperationSearch, true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchFiles(ctx, request, sc)
		}))

	fileStatsTool := mcp.NewTool("drive_file_stats",
		mcp.WithDescription("Count the files matching a search by category (Image, PDF, Google Sheets, Google Docs, Word, Other) with their total size"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("keyword",
			mcp.Description("Text the file name must contain"),
		),
		mcp.WithString("fileType",
			mcp.Description(fileTypeDescription),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of files to include (default: 50, max: 1000)"),
		),
	)
	s.AddTool(fileStatsTool, common.InstrumentedToolHandlerWithService(
		"drive_file_stats", instrumentation.ServiceDrive, instrumentation.OperationSearch, true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFileStats(ctx, request, sc)
		}))

	getFileTool := mcp.NewTool("drive_get_file",
		mcp.WithDescription("Get metadata and the preview link of a Google Drive file"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The ID of the file"),
		),
	)
	s.AddTool(getFileTool, common.InstrumentedToolHandlerWithService(
		"drive_get_file", instrumentation.ServiceDrive, instrumentation.OperationGet, true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetFile(ctx, request, sc)
		}))

	if !readOnly {
		if err := registerFileTools(s, sc); err != nil {
			return fmt.Errorf("failed to register file tools: %w", err)
		}
	}

	return nil
}

func searchOptionsFromArgs(args map[string]interface{}) drive.SearchOptions {
	return drive.SearchOptions{
		Keyword:    common.StringArg(args, "keyword"),
		FileType:   drive.ResolveFileType(common.StringArg(args, "fileType")),
		MaxResults: int(common.IntArg(args, "maxResults", drive.DefaultMaxResults)),
		OrderBy:    common.StringArg(args, "orderBy"),
		PageToken:  common.StringArg(args, "pageToken"),
	}
}

func handleSearchFiles(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	client, err := sc.DriveClientForAccount(ctx, account)
	if err != nil {
		return common.ClientError(sc, "Drive", account, err), nil
	}

	files, nextPageToken, err := client.SearchFiles(ctx, searchOptionsFromArgs(args))
	if err != nil {
		return common.APIError("search files", err), nil
	}
	if len(files) == 0 {
		return mcp.NewToolResultText("No files found."), nil
	}

	views := make([]fileView, 0, len(files))
	for _, f := range files {
		if f != nil {
			views = append(views, newFileView(f))
		}
	}

	response := map[string]interface{}{
		"count": len(views),
		"files": views,
	}
	if nextPageToken != "" {
		response["nextPageToken"] = nextPageToken
	}
	return common.JSONResult(response)
}

func handleFileStats(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	client, err := sc.DriveClientForAccount(ctx, account)
	if err != nil {
		return common.ClientError(sc, "Drive", account, err), nil
	}

	opts := searchOptionsFromArgs(args)
	opts.OrderBy, opts.PageToken = "", ""
	files, _, err := client.SearchFiles(ctx, opts)
	if err != nil {
		return common.APIError("search files", err), nil
	}

	var total int64
	for _, f := range files {
		if f != nil {
			total += f.Size
		}
	}

	return common.JSONResult(map[string]interface{}{
		"totalFiles": len(files),
		"totalSize":  drive.FormatSize(total),
		"stats":      drive.ComputeStats(files),
	})
}

func handleGetFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	fileID, err := common.RequiredStringArg(args, "fileId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := sc.DriveClientForAccount(ctx, account)
	if err != nil {
		return common.ClientError(sc, "Drive", account, err), nil
	}

	file, err := client.GetFile(ctx, fileID)
	if err != nil {
		return common.APIError("get file", err), nil
	}
	return common.JSONResult(newFileView(file))
}
