// Package vision_tools provides the receipt scanning MCP tool.
//
// vision_scan_receipt reads an image from a path or base64 content, runs
// Cloud Vision text detection and extracts the store, date and total.
// With useSample it parses a built-in receipt without calling Vision.
package vision_tools
