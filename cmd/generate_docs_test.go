package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/gapidemo/internal/config"
)

func TestGetCategoryFromToolName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"gmail_send_email", "Gmail Tools"},
		{"drive_search_files", "Google Drive Tools"},
		{"calendar_schedule_meeting", "Google Calendar Tools"},
		{"vision_scan_receipt", "Cloud Vision Tools"},
		{"sheets_append_row", "Google Sheets Tools"},
		{"google_user_info", "Google Account Tools"},
		{"unknown", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getCategoryFromToolName(tt.name); got != tt.expected {
				t.Errorf("getCategoryFromToolName(%q) = %q, want %q", tt.name, got, tt.expected)
			}
		})
	}
}

func TestGenerateToolMarkdown(t *testing.T) {
	tool := mcp.NewTool("sheets_append_row",
		mcp.WithDescription("Append a row"),
		mcp.WithString("values", mcp.Required(), mcp.Description("Cell values")),
		mcp.WithString("range"),
	)

	got := generateToolMarkdown(tool)

	for _, want := range []string{
		"### sheets_append_row\n\n",
		"Append a row\n\n",
		"- `range` (optional): string parameter\n",
		"- `values` (required): Cell values\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown does not contain %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "`range`") > strings.Index(got, "`values`") {
		t.Errorf("arguments are not sorted:\n%s", got)
	}
}

func TestToolsMarkdown(t *testing.T) {
	saved := cfg
	cfg = config.Default()
	t.Cleanup(func() { cfg = saved })

	got, err := toolsMarkdown(context.Background())
	if err != nil {
		t.Fatalf("toolsMarkdown() error = %v", err)
	}

	for _, want := range []string{
		"# MCP Tools Reference",
		"## Safety Mode",
		"## Gmail Tools",
		"### gmail_send_email",
		"## Cloud Vision Tools",
		"### sheets_append_receipt",
		"- [Google Sheets Tools](#google-sheets-tools)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown does not contain %q", want)
		}
	}
}
