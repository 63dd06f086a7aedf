package vision_tools

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gapidemo/internal/instrumentation"
	"github.com/teemow/gapidemo/internal/server"
	"github.com/teemow/gapidemo/internal/tools/common"
	"github.com/teemow/gapidemo/internal/vision"
)

// Scan is the outcome of a receipt scan.
type Scan struct {
	Text    string         `json:"text"`
	Receipt vision.Receipt `json:"receipt"`
	Sample  bool           `json:"sample,omitempty"`
}

// ImageOptions are the tool options selecting the image to scan.
func ImageOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("imageContent",
			mcp.Description("Base64 encoded receipt image (PNG or JPEG)"),
		),
		mcp.WithBoolean("useSample",
			mcp.Description("Parse the built-in sample receipt instead of an image (default: false)"),
		),
	}
}

// RegisterVisionTools registers the Vision tools with the MCP server.
func RegisterVisionTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Scan a receipt image with Cloud Vision text detection and extract the store, date and total"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Without a token the configured Vision API key is used."),
		),
	}, ImageOptions()...)

	scanReceiptTool := mcp.NewTool("vision_scan_receipt", opts...)
	s.AddTool(scanReceiptTool, common.InstrumentedToolHandlerWithService(
		"vision_scan_receipt", instrumentation.ServiceVision, instrumentation.OperationAnnotate, true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			scan, errResult := ScanFromArgs(ctx, sc, request.GetArguments())
			if errResult != nil {
				return errResult, nil
			}
			return common.JSONResult(scan)
		}))

	return nil
}

// ScanFromArgs scans the receipt selected by args. A non-nil result reports
// the failure to the caller.
func ScanFromArgs(ctx context.Context, sc *server.ServerContext, args map[string]interface{}) (*Scan, *mcp.CallToolResult) {
	if common.BoolArg(args, "useSample", false) {
		return &Scan{
			Text:    vision.SampleReceiptText,
			Receipt: vision.ParseReceipt(vision.SampleReceiptText),
			Sample:  true,
		}, nil
	}

	image, err := imageFromArgs(args)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}

	account := common.GetAccountFromArgs(ctx, args)
	client, err := sc.VisionClientForAccount(ctx, account)
	if err != nil {
		return nil, common.ClientError(sc, "Vision", account, err)
	}

	text, err := client.DetectText(ctx, image)
	if err != nil {
		return nil, common.APIError("detect text", err)
	}
	return &Scan{Text: text, Receipt: vision.ParseReceipt(text)}, nil
}

func imageFromArgs(args map[string]interface{}) ([]byte, error) {
	if err := common.RejectPathArg(args, "imagePath", "imageContent"); err != nil {
		return nil, err
	}

	encoded := common.StringArg(args, "imageContent")
	if encoded == "" {
		return nil, fmt.Errorf("please choose a receipt image: imageContent is required (or set useSample)")
	}
	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("imageContent is not valid base64: %w", err)
	}
	return image, nil
}
