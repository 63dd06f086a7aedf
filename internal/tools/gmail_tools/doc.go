// Package gmail_tools provides the MCP tools for reading Gmail and composing
// and sending email.
package gmail_tools
