// Package sheets_tools provides MCP tools that append rows to Google Sheets.
//
// Both tools write to the spreadsheet and are only registered in yolo mode.
// The spreadsheet and range default to the configured values.
package sheets_tools
