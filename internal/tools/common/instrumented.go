package common

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/gapidemo/internal/instrumentation"
	"github.com/teemow/gapidemo/internal/server"
)

// ToolHandler is the signature of an MCP tool handler.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with a tracing span, metrics and
// audit logging. An error result counts as a failed invocation.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", true, sc, handler))
func InstrumentedToolHandler(toolName string, readOnly bool, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return InstrumentedToolHandlerWithService(toolName, "", "", readOnly, sc, handler)
}

// InstrumentedToolHandlerWithService is like InstrumentedToolHandler but also
// records the Google service and operation type
// (google_api_operations_total, google_api_operation_duration_seconds).
func InstrumentedToolHandlerWithService(toolName, serviceName, operation string, readOnly bool, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		account := GetAccountFromArgs(ctx, request.GetArguments())

		attrs := []attribute.KeyValue{
			attribute.String(instrumentation.SpanAttrAccount, account),
			attribute.Bool(instrumentation.SpanAttrReadOnly, readOnly),
		}
		if serviceName != "" {
			attrs = append(attrs,
				attribute.String(instrumentation.SpanAttrService, serviceName),
				attribute.String(instrumentation.SpanAttrOperation, operation),
			)
		}
		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attrs...)
		defer span.End()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithAccount(account).
			WithReadOnly(readOnly)

		result, err := handler(ctx, request)
		duration := time.Since(start)

		failure := err
		if failure == nil && result != nil && result.IsError {
			failure = errors.New(ResultText(result))
		}
		invocation.Complete(failure)

		status := instrumentation.StatusOf(failure)
		if failure != nil {
			instrumentation.SetSpanError(span, failure)
		} else {
			instrumentation.SetSpanSuccess(span)
		}

		metrics := sc.Metrics()
		metrics.RecordToolInvocation(ctx, toolName, status, account, duration)
		if serviceName != "" {
			metrics.RecordGoogleAPIOperation(ctx, serviceName, operation, status, duration)
		}
		sc.AuditLogger().LogToolInvocation(invocation)

		return result, err
	}
}

// ResultText returns the text of the first text content of result.
func ResultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
