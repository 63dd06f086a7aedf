package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/gapidemo/internal/google"
	"github.com/teemow/gapidemo/internal/mimemail"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), google.BearerCredential("default", "test-token"), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient_RequiresCredential(t *testing.T) {
	_, err := NewClient(context.Background(), nil)
	assert.ErrorIs(t, err, google.ErrNoToken)
}

func TestSendDraft_PostsRawPayload(t *testing.T) {
	var body []byte
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/gmail/v1/users/me/messages/send", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		body, _ = io.ReadAll(r.Body)
		writeJSON(w, map[string]interface{}{"id": "sent-1", "threadId": "thread-1", "labelIds": []string{"SENT"}})
	}))

	sent, err := client.SendDraft(context.Background(), mimemail.Draft{To: "a@b.com", Subject: "Hi", Body: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "sent-1", sent.ID)
	assert.Equal(t, "thread-1", sent.ThreadID)
	assert.Equal(t, []string{"SENT"}, sent.LabelIDs)

	expected, err := json.Marshal(mimemail.NewPayload(mimemail.Encode("To: a@b.com\nSubject: Hi\n\nHello")))
	require.NoError(t, err)
	assert.JSONEq(t, string(expected), string(body))
}

func TestSendDraft_WithAttachment(t *testing.T) {
	var payload mimemail.Payload
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		writeJSON(w, map[string]string{"id": "sent-2"})
	}))
	client.WithComposer(mimemail.NewComposer(mimemail.WithBoundaryGenerator(mimemail.StaticBoundary("boundary-test000001"))))

	draft := mimemail.Draft{
		To:         "a@b.com",
		Subject:    "Report",
		Body:       "See attached",
		Attachment: &mimemail.Attachment{Name: "r.txt", MimeType: "text/plain", Content: []byte("hi")},
	}
	_, err := client.SendDraft(context.Background(), draft)
	require.NoError(t, err)

	decoded, err := mimemail.Decode(payload.Raw)
	require.NoError(t, err)

	want, err := client.composer.Compose(draft)
	require.NoError(t, err)
	assert.Equal(t, want, decoded)
}

func TestSendDraft_MissingFieldMakesNoRequest(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.SendDraft(context.Background(), mimemail.Draft{To: "a@b.com", Body: "Hello"})
	var mfe *mimemail.MissingFieldError
	require.True(t, errors.As(err, &mfe))
	assert.Equal(t, "subject", mfe.Field)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestSendRaw_Errors(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"Insufficient Permission"}}`))
	}))

	_, err := client.SendRaw(context.Background(), "")
	assert.Error(t, err)

	_, err = client.SendRaw(context.Background(), "abc")
	assert.ErrorIs(t, err, google.ErrForbidden)
	assert.Contains(t, err.Error(), "failed to send email")
}

func TestComposeRaw(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())
	raw, err := client.ComposeRaw(mimemail.Draft{To: "a@b.com", Subject: "Hi", Body: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, mimemail.Encode("To: a@b.com\nSubject: Hi\n\nHello"), raw)
}

func TestListMessages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("maxResults"))
		assert.Equal(t, "is:unread", r.URL.Query().Get("q"))
		writeJSON(w, map[string]interface{}{
			"messages": []map[string]string{
				{"id": "m1", "threadId": "t1"},
				{"id": "m2", "threadId": "t2"},
			},
		})
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "metadata", r.URL.Query().Get("format"))
		assert.ElementsMatch(t, []string{"Subject", "From", "Date"}, r.URL.Query()["metadataHeaders"])
		id := r.URL.Path[len("/gmail/v1/users/me/messages/"):]
		writeJSON(w, &gmail.Message{
			Id:       id,
			ThreadId: "t-" + id,
			Snippet:  "snippet " + id,
			Payload: &gmail.MessagePart{
				Headers: []*gmail.MessagePartHeader{
					{Name: "Subject", Value: "Subject " + id},
					{Name: "From", Value: "sender@example.com"},
					{Name: "Date", Value: "Mon, 1 Jan 2024 10:00:00 +0000"},
				},
			},
		})
	})

	client := newTestClient(t, mux)
	msgs, err := client.ListMessages(context.Background(), ListOptions{MaxResults: 2, Query: "is:unread"})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "Subject m1", msgs[0].Subject)
	assert.Equal(t, "sender@example.com", msgs[0].From)
	assert.Equal(t, "Mon, 1 Jan 2024 10:00:00 +0000", msgs[0].Date)
	assert.Equal(t, "snippet m2", msgs[1].Snippet)
}

func TestListMessages_DefaultLimit(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("maxResults"))
		writeJSON(w, map[string]interface{}{})
	}))

	msgs, err := client.ListMessages(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestGetMessageContent(t *testing.T) {
	tests := []struct {
		name       string
		payload    *gmail.MessagePart
		wantBody   string
		wantIsHTML bool
	}{
		{
			name: "html preferred over text",
			payload: &gmail.MessagePart{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("plain")}},
					{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<p>html</p>")}},
				},
			},
			wantBody:   "<p>html</p>",
			wantIsHTML: true,
		},
		{
			name: "nested text part",
			payload: &gmail.MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*gmail.MessagePart{
					{
						MimeType: "multipart/alternative",
						Parts: []*gmail.MessagePart{
							{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("nested plain")}},
						},
					},
				},
			},
			wantBody: "nested plain",
		},
		{
			name: "single part body",
			payload: &gmail.MessagePart{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: base64.RawURLEncoding.EncodeToString([]byte("top level?"))},
			},
			wantBody: "top level?",
		},
		{
			name:     "no content",
			payload:  &gmail.MessagePart{MimeType: "multipart/mixed"},
			wantBody: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := tt.payload
			payload.Headers = []*gmail.MessagePartHeader{
				{Name: "subject", Value: "Hello"},
				{Name: "From", Value: "a@b.com"},
			}
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "full", r.URL.Query().Get("format"))
				writeJSON(w, &gmail.Message{Id: "m1", Payload: payload})
			}))

			content, err := client.GetMessageContent(context.Background(), "m1")
			require.NoError(t, err)
			assert.Equal(t, "m1", content.ID)
			assert.Equal(t, "Hello", content.Subject)
			assert.Equal(t, "a@b.com", content.From)
			assert.Equal(t, tt.wantBody, content.Body)
			assert.Equal(t, tt.wantIsHTML, content.IsHTML)
		})
	}
}

func TestGetMessageContent_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Not Found"}}`))
	}))

	_, err := client.GetMessageContent(context.Background(), "missing")
	assert.ErrorIs(t, err, google.ErrNotFound)

	_, err = client.GetMessageContent(context.Background(), "")
	assert.Error(t, err)
}

func TestProfile(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gmail/v1/users/me/profile", r.URL.Path)
		writeJSON(w, map[string]interface{}{"emailAddress": "jane@example.com"})
	}))
	client.WithRateLimiter(google.NewRateLimiter(google.ServiceGmail))

	email, err := client.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", email)
	assert.Equal(t, "default", client.Account())
}

func TestHeaderValue(t *testing.T) {
	headers := []*gmail.MessagePartHeader{
		{Name: "From", Value: "a@b.com"},
		{Name: "SUBJECT", Value: "Hi"},
	}
	assert.Equal(t, "a@b.com", HeaderValue(headers, "from"))
	assert.Equal(t, "Hi", HeaderValue(headers, "Subject"))
	assert.Equal(t, "", HeaderValue(headers, "Date"))
	assert.Equal(t, "", HeaderValue(nil, "Date"))
}

func TestMessageContent_DisplayBody(t *testing.T) {
	assert.Equal(t, NoContent, (*MessageContent)(nil).DisplayBody())
	assert.Equal(t, NoContent, (&MessageContent{}).DisplayBody())
	assert.Equal(t, "hi", (&MessageContent{Body: "hi"}).DisplayBody())
}
