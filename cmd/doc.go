// Package cmd implements the command-line interface for gapidemo.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide Google API tools for AI assistants
//   - login: Run the OAuth consent flow and save the token of an account
//   - send: Compose and send an email through Gmail (or print it with --dry-run)
//   - scan-receipt: Read a receipt image with Cloud Vision and optionally append it to a sheet
//   - config: Show the effective configuration or write a default config file
//   - tools: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// Commands other than version and config init load the configuration before
// they run, with flags taking precedence over it.
package cmd
