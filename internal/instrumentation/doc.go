// Package instrumentation wires OpenTelemetry metrics, tracing and audit
// logging into gapidemo.
//
// Metrics:
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds: tool calls by tool and status
//   - google_api_operations_total, google_api_operation_duration_seconds: Google
//     API calls by service (gmail, drive, calendar, vision, sheets, userinfo),
//     operation and status
//   - http_requests_total, http_request_duration_seconds: streamable HTTP traffic
//   - oauth_logins_total: completed and failed login flows
//   - emails_composed_total: messages built by the composer, by kind
//     (plain or multipart) and status
//
// With the prometheus exporter each Provider owns a registry, served by
// Provider.MetricsHandler on the dedicated metrics port. OTLP and stdout
// exporters are available for metrics and traces.
//
// Environment:
//   - INSTRUMENTATION_ENABLED (default true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE
//   - OTEL_TRACES_SAMPLER_ARG (default 0.1)
//   - OTEL_SERVICE_NAME (default gapidemo)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_PII
package instrumentation
