package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/gapidemo/internal/logging"
)

// ToolInvocation is the audit record of one tool call.
// UserEmail is PII and only logged with IncludePII.
type ToolInvocation struct {
	ID        string
	Tool      string
	UserEmail string
	Account   string
	ReadOnly  bool

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// NewToolInvocation starts timing a call to tool.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		ID:        uuid.NewString(),
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithUser sets the authenticated user email.
func (ti *ToolInvocation) WithUser(email string) *ToolInvocation {
	ti.UserEmail = email
	return ti
}

// WithAccount sets the local account name.
func (ti *ToolInvocation) WithAccount(account string) *ToolInvocation {
	ti.Account = account
	return ti
}

// WithReadOnly marks whether the tool only reads data.
func (ti *ToolInvocation) WithReadOnly(readOnly bool) *ToolInvocation {
	ti.ReadOnly = readOnly
	return ti
}

// WithSpanContext copies the trace and span IDs from ctx.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		ti.TraceID = sc.TraceID().String()
		ti.SpanID = sc.SpanID().String()
	}
	return ti
}

// Complete stops the clock and records the outcome.
func (ti *ToolInvocation) Complete(err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = err == nil
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// Status returns StatusSuccess or StatusError.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// UserDomain returns the domain of the user email, or "unknown".
func (ti *ToolInvocation) UserDomain() string {
	if d := logging.ExtractDomain(ti.UserEmail); d != "" {
		return d
	}
	return "unknown"
}

// attrs builds the log attributes. The user is either the full email or
// its domain plus a stable hash.
func (ti *ToolInvocation) attrs(includePII bool) []any {
	out := []any{
		slog.String("invocation_id", ti.ID),
		logging.Tool(ti.Tool),
		logging.Duration(ti.Duration),
		slog.Bool("success", ti.Success),
		slog.Bool("read_only", ti.ReadOnly),
	}
	if includePII {
		out = append(out, slog.String("user", ti.UserEmail))
	} else {
		out = append(out, slog.String("user_domain", ti.UserDomain()))
		if ti.UserEmail != "" {
			out = append(out, logging.UserHash(ti.UserEmail))
		}
	}
	if ti.Account != "" {
		out = append(out, logging.Account(ti.Account))
	}
	if ti.TraceID != "" {
		out = append(out, slog.String("trace_id", ti.TraceID), slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		out = append(out, slog.String(logging.KeyError, ti.Error))
	}
	return out
}

// AuditLogger writes one record per tool invocation.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates an audit logger. A nil logger uses slog.Default.
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger.With(slog.String("component", "audit")),
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogToolInvocation logs a completed invocation at info, or warn when it failed.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled || ti == nil {
		return
	}
	if ti.Success {
		al.logger.Info("tool_executed", ti.attrs(al.includePII)...)
	} else {
		al.logger.Warn("tool_failed", ti.attrs(al.includePII)...)
	}
}
