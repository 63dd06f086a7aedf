// Package server provides the MCP server context and the HTTP servers of gapidemo.
//
// ServerContext resolves Google credentials and hands out per-account service
// clients (Gmail, Drive, Calendar, Sheets, Vision). Clients created from the
// token provider are cached per account. A request that carries
// "Authorization: Bearer <google access token>" over streamable HTTP gets its
// own uncached clients built from that token.
//
// HTTPServer serves MCP at /mcp together with /healthz, /readyz and
// /healthz/detailed. MetricsServer exposes /metrics on a separate address.
package server
