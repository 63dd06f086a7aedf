package sheets_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gapidemo/internal/instrumentation"
	"github.com/teemow/gapidemo/internal/logging"
	"github.com/teemow/gapidemo/internal/server"
	"github.com/teemow/gapidemo/internal/sheets"
	"github.com/teemow/gapidemo/internal/tools/common"
	"github.com/teemow/gapidemo/internal/tools/vision_tools"
	"github.com/teemow/gapidemo/internal/vision"
)

const accountDescription = "Account name (default: 'default'). Used to manage multiple Google accounts."

// now is replaced in tests.
var now = time.Now

// RegisterSheetsTools registers the Sheets tools with the MCP server.
// Nothing is registered when readOnly is true.
func RegisterSheetsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if readOnly {
		return nil
	}

	appendRowTool := mcp.NewTool("sheets_append_row",
		append(targetOptions("Append one row of values to a spreadsheet"),
			mcp.WithString("values",
				mcp.Required(),
				mcp.Description("Cell values as an array of strings or a comma-separated string"),
			),
		)...,
	)
	s.AddTool(appendRowTool, common.InstrumentedToolHandlerWithService(
		"sheets_append_row", instrumentation.ServiceSheets, instrumentation.OperationAppend, false, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAppendRow(ctx, request, sc)
		}))

	receiptOpts := append(targetOptions("Append a receipt as [scanned at, store, date, total]. Give the fields directly or scan an image."),
		mcp.WithString("store",
			mcp.Description("Store name"),
		),
		mcp.WithString("date",
			mcp.Description("Receipt date as printed"),
		),
		mcp.WithString("total",
			mcp.Description("Receipt total"),
		),
	)
	appendReceiptTool := mcp.NewTool("sheets_append_receipt", append(receiptOpts, vision_tools.ImageOptions()...)...)
	s.AddTool(appendReceiptTool, common.InstrumentedToolHandlerWithService(
		"sheets_append_receipt", instrumentation.ServiceSheets, instrumentation.OperationAppend, false, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAppendReceipt(ctx, request, sc)
		}))

	return nil
}

func targetOptions(description string) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("spreadsheetId",
			mcp.Description("Spreadsheet ID (default from configuration)"),
		),
		mcp.WithString("range",
			mcp.Description("A1 range of the table to append to (default: 'Sheet1!A1')"),
		),
	}
}

// target resolves the spreadsheet and range of a call.
func target(sc *server.ServerContext, args map[string]interface{}) (string, string, error) {
	cfg := sc.Config().Sheets

	id := common.StringArg(args, "spreadsheetId")
	if id == "" {
		id = cfg.SpreadsheetID
	}
	if id == "" {
		return "", "", fmt.Errorf("spreadsheetId is required (no default spreadsheet is configured)")
	}

	rng := common.StringArg(args, "range")
	if rng == "" {
		rng = cfg.Range
	}
	if rng == "" {
		rng = sheets.DefaultRange
	}
	return id, rng, nil
}

func appendRow(ctx context.Context, sc *server.ServerContext, args map[string]interface{}, row []interface{}) (*mcp.CallToolResult, error) {
	account := common.GetAccountFromArgs(ctx, args)

	id, rng, err := target(sc, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := sc.SheetsClientForAccount(ctx, account)
	if err != nil {
		return common.ClientError(sc, "Sheets", account, err), nil
	}

	result, err := client.AppendRows(ctx, id, rng, [][]interface{}{row})
	if err != nil {
		return common.APIError("append row", err), nil
	}

	logging.WithOperation(sc.Logger(), "sheets.append").Info("row appended",
		logging.Account(account),
		logging.FileID(id),
	)
	return common.JSONResult(result)
}

func handleAppendRow(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	values := common.StringListArg(args, "values")
	if len(values) == 0 {
		return mcp.NewToolResultError("values is required"), nil
	}
	return appendRow(ctx, sc, args, sheets.StringRow(values))
}

func handleAppendReceipt(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	receipt := vision.Receipt{
		Store: common.StringArg(args, "store"),
		Date:  common.StringArg(args, "date"),
		Total: common.StringArg(args, "total"),
	}
	if receipt.Empty() {
		scan, errResult := vision_tools.ScanFromArgs(ctx, sc, args)
		if errResult != nil {
			return errResult, nil
		}
		receipt = scan.Receipt
	}
	if receipt.Empty() {
		return mcp.NewToolResultError("no store, date or total could be extracted from the receipt"), nil
	}

	return appendRow(ctx, sc, args, sheets.ReceiptRow(receipt, now()))
}
