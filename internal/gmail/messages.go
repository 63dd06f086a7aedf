package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/gapidemo/internal/google"
)

var summaryHeaders = []string{"Subject", "From", "Date"}

// ListMessages returns the newest messages with their summary headers.
// Each message costs one extra metadata request.
func (c *Client) ListMessages(ctx context.Context, opts ListOptions) ([]MessageSummary, error) {
	max := opts.MaxResults
	if max <= 0 {
		max = DefaultMaxResults
	}
	if max > maxResultsLimit {
		max = maxResultsLimit
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	call := c.svc.Messages.List(userID).MaxResults(max).Context(ctx)
	if opts.Query != "" {
		call = call.Q(opts.Query)
	}
	if len(opts.LabelIDs) > 0 {
		call = call.LabelIds(opts.LabelIDs...)
	}

	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", google.WrapError(c.limiter.Observe(err)))
	}

	summaries := make([]MessageSummary, 0, len(res.Messages))
	for _, m := range res.Messages {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		msg, err := c.svc.Messages.Get(userID, m.Id).
			Format("metadata").
			MetadataHeaders(summaryHeaders...).
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", m.Id, google.WrapError(c.limiter.Observe(err)))
		}
		summaries = append(summaries, summarize(msg))
	}

	return summaries, nil
}

// GetMessageContent fetches a full message and extracts its readable body.
// The first text/html part wins over the first text/plain part; a message
// without either falls back to the top-level body.
func (c *Client) GetMessageContent(ctx context.Context, messageID string) (*MessageContent, error) {
	if messageID == "" {
		return nil, fmt.Errorf("message ID is required")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	msg, err := c.svc.Messages.Get(userID, messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", google.WrapError(c.limiter.Observe(err)))
	}

	content := &MessageContent{ID: msg.Id}
	if msg.Payload == nil {
		return content, nil
	}

	content.Subject = HeaderValue(msg.Payload.Headers, "Subject")
	content.From = HeaderValue(msg.Payload.Headers, "From")
	content.To = HeaderValue(msg.Payload.Headers, "To")
	content.Date = HeaderValue(msg.Payload.Headers, "Date")

	data, isHTML := selectBody(msg.Payload)
	if data == "" {
		return content, nil
	}

	body, err := decodeBody(data)
	if err != nil {
		return nil, err
	}
	content.Body = body
	content.IsHTML = isHTML
	return content, nil
}

func summarize(msg *gmail.Message) MessageSummary {
	s := MessageSummary{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
	}
	if msg.Payload != nil {
		s.Subject = HeaderValue(msg.Payload.Headers, "Subject")
		s.From = HeaderValue(msg.Payload.Headers, "From")
		s.Date = HeaderValue(msg.Payload.Headers, "Date")
	}
	return s
}

func selectBody(payload *gmail.MessagePart) (data string, isHTML bool) {
	var html, text string
	walkParts(payload, func(part *gmail.MessagePart) {
		if part.Body == nil || part.Body.Data == "" {
			return
		}
		switch {
		case html == "" && part.MimeType == "text/html":
			html = part.Body.Data
		case text == "" && part.MimeType == "text/plain":
			text = part.Body.Data
		}
	})

	switch {
	case html != "":
		return html, true
	case text != "":
		return text, false
	case payload.Body != nil:
		return payload.Body.Data, strings.HasPrefix(payload.MimeType, "text/html")
	}
	return "", false
}

// walkParts visits part and all nested parts depth-first.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}
	fn(part)
	for _, sub := range part.Parts {
		walkParts(sub, fn)
	}
}

// decodeBody decodes base64url body data, padded or not.
func decodeBody(data string) (string, error) {
	for _, enc := range []*base64.Encoding{base64.URLEncoding, base64.RawURLEncoding, base64.StdEncoding} {
		if decoded, err := enc.DecodeString(data); err == nil {
			return string(decoded), nil
		}
	}
	return "", fmt.Errorf("failed to decode message body")
}
