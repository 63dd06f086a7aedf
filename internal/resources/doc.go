// Package resources provides MCP resources for exposing user data.
// Resources are read-only data sources that MCP clients can fetch, such as
// the profile of the signed-in Google user.
package resources
