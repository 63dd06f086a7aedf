package gmail

// ListOptions controls ListMessages.
type ListOptions struct {
	// MaxResults caps the number of messages (default 10, max 100).
	MaxResults int64
	// Query is a Gmail search query such as "is:unread".
	Query string
	// LabelIDs restricts results to messages carrying all of these labels.
	LabelIDs []string
}

// MessageSummary is a message as shown in the inbox list.
type MessageSummary struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
	Subject  string `json:"subject"`
	From     string `json:"from"`
	Date     string `json:"date"`
	Snippet  string `json:"snippet,omitempty"`
}

// NoContent is shown for a message without a readable body.
const NoContent = "No content"

// MessageContent is a message opened for reading.
type MessageContent struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
	To      string `json:"to,omitempty"`
	Date    string `json:"date"`
	Body    string `json:"body"`
	IsHTML  bool   `json:"isHtml"`
}

// SentMessage identifies a message accepted by Gmail.
type SentMessage struct {
	ID       string   `json:"id"`
	ThreadID string   `json:"threadId"`
	LabelIDs []string `json:"labelIds,omitempty"`
}

// DisplayBody returns the body, or NoContent when it is empty.
func (m *MessageContent) DisplayBody() string {
	if m == nil || m.Body == "" {
		return NoContent
	}
	return m.Body
}
