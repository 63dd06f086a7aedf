// Package common provides shared helpers for the MCP tool packages: account
// resolution, argument parsing, error results and the instrumentation wrapper
// every tool handler is registered through.
package common
