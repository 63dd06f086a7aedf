package gmail

import (
	"context"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/gapidemo/internal/google"
	"github.com/teemow/gapidemo/internal/mimemail"
)

// ComposeRaw builds and encodes draft without sending it.
func (c *Client) ComposeRaw(draft mimemail.Draft) (string, error) {
	return c.composer.Raw(draft)
}

// SendDraft composes draft and sends it as {"raw": ...}.
// A *mimemail.MissingFieldError is returned unwrapped before any request is made.
func (c *Client) SendDraft(ctx context.Context, draft mimemail.Draft) (*SentMessage, error) {
	raw, err := c.composer.Raw(draft)
	if err != nil {
		return nil, err
	}
	return c.SendRaw(ctx, raw)
}

// SendRaw sends an already encoded message.
func (c *Client) SendRaw(ctx context.Context, raw string) (*SentMessage, error) {
	if raw == "" {
		return nil, fmt.Errorf("raw message is required")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	msg, err := c.svc.Messages.Send(userID, &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to send email: %w", google.WrapError(c.limiter.Observe(err)))
	}

	return &SentMessage{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		LabelIDs: msg.LabelIds,
	}, nil
}
