package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Attribute keys.
const (
	KeyOperation = "operation"
	KeyService   = "service"
	KeyAccount   = "account"
	KeyUserHash  = "user_hash"
	KeyDomain    = "recipient_domain"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyTool      = "tool"
	KeyFileID    = "file_id"
)

// Status values. instrumentation imports this package, so it keeps its own copy.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(Operation(operation))
}

// WithService returns a logger with the service attribute set.
func WithService(logger *slog.Logger, service string) *slog.Logger {
	return logger.With(Service(service))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(Tool(tool))
}

func Operation(op string) slog.Attr      { return slog.String(KeyOperation, op) }
func Service(svc string) slog.Attr       { return slog.String(KeyService, svc) }
func Account(account string) slog.Attr   { return slog.String(KeyAccount, account) }
func Tool(tool string) slog.Attr         { return slog.String(KeyTool, tool) }
func Status(status string) slog.Attr     { return slog.String(KeyStatus, status) }
func FileID(id string) slog.Attr         { return slog.String(KeyFileID, id) }
func Duration(d time.Duration) slog.Attr { return slog.Duration(KeyDuration, d) }

// Err returns the error attribute, or an empty group (dropped by slog) for a nil error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail returns a stable, non-reversible identifier for an email.
func AnonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "user:" + hex.EncodeToString(sum[:8])
}

// UserHash returns the user_hash attribute for email.
func UserHash(email string) slog.Attr {
	return slog.String(KeyUserHash, AnonymizeEmail(email))
}

// ExtractDomain returns the part after "@", or "" for anything that is not an address.
func ExtractDomain(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

// Recipient logs the domain of a recipient address instead of the address.
func Recipient(email string) slog.Attr {
	return slog.String(KeyDomain, ExtractDomain(email))
}

// SanitizeToken reports only the length of a token.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
