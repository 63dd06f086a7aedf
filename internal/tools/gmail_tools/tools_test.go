package gmail_tools

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/teemow/gapidemo/internal/google"
	"github.com/teemow/gapidemo/internal/mimemail"
	"github.com/teemow/gapidemo/internal/tools/toolstest"
)

func gmailEndpoint(h http.HandlerFunc) map[google.ServiceType]toolstest.Endpoint {
	return map[google.ServiceType]toolstest.Endpoint{
		google.ServiceGmail: {Path: "/", Handler: h},
	}
}

func TestRegisterGmailTools(t *testing.T) {
	tests := []struct {
		name     string
		readOnly bool
		want     []string
	}{
		{
			name:     "read-only",
			readOnly: true,
			want:     []string{"gmail_compose_preview", "gmail_get_message", "gmail_list_messages"},
		},
		{
			name:     "yolo",
			readOnly: false,
			want:     []string{"gmail_compose_preview", "gmail_get_message", "gmail_list_messages", "gmail_send_email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := toolstest.NewServerContext(t, toolstest.Setup{Token: "tok"})
			s := toolstest.NewMCPServer()
			if err := RegisterGmailTools(s, sc, tt.readOnly); err != nil {
				t.Fatalf("RegisterGmailTools() error = %v", err)
			}
			if got := toolstest.ToolNames(t, s); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tools = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComposePreview_Plain(t *testing.T) {
	sc := toolstest.NewServerContext(t, toolstest.Setup{})
	s := toolstest.NewMCPServer()
	if err := RegisterGmailTools(s, sc, true); err != nil {
		t.Fatal(err)
	}

	res := toolstest.CallTool(t, s, "gmail_compose_preview", map[string]interface{}{
		"to": "a@b.com", "subject": "Hi", "body": "Hello",
	})
	if res.IsError {
		t.Fatalf("unexpected error result: %s", res.Text)
	}

	var out struct {
		Message string           `json:"message"`
		Payload mimemail.Payload `json:"payload"`
	}
	if err := json.Unmarshal([]byte(res.Text), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.Message != "To: a@b.com\nSubject: Hi\n\nHello" {
		t.Errorf("message = %q", out.Message)
	}
	if out.Payload.Raw != mimemail.Encode(out.Message) {
		t.Errorf("payload raw = %q", out.Payload.Raw)
	}
}

func TestComposePreview_AttachmentContent(t *testing.T) {
	sc := toolstest.NewServerContext(t, toolstest.Setup{})
	s := toolstest.NewMCPServer()
	if err := RegisterGmailTools(s, sc, true); err != nil {
		t.Fatal(err)
	}

	res := toolstest.CallTool(t, s, "gmail_compose_preview", map[string]interface{}{
		"to": "a@b.com", "subject": "Report", "body": "See attached",
		"attachmentContent": base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")),
		"attachmentName":    "report.pdf",
	})
	if res.IsError {
		t.Fatalf("unexpected error result: %s", res.Text)
	}

	var out struct {
		Message   string `json:"message"`
		Multipart bool   `json:"multipart"`
	}
	if err := json.Unmarshal([]byte(res.Text), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !out.Multipart {
		t.Error("expected a multipart message")
	}
	for _, want := range []string{
		"Content-Type: multipart/mixed; boundary=\"boundary-",
		"Content-Type: application/pdf; name=\"report.pdf\"",
		"Content-Disposition: attachment; filename=\"report.pdf\"",
		base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")),
		"\r\n",
	} {
		if !strings.Contains(out.Message, want) {
			t.Errorf("message does not contain %q", want)
		}
	}
}

func TestComposePreview_RejectsLocalPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "google-default.token")
	secret := `{"refresh_token":"SECRET-REFRESH"}`
	if err := os.WriteFile(path, []byte(secret), 0o600); err != nil {
		t.Fatal(err)
	}

	sc := toolstest.NewServerContext(t, toolstest.Setup{})
	s := toolstest.NewMCPServer()
	if err := RegisterGmailTools(s, sc, true); err != nil {
		t.Fatal(err)
	}

	res := toolstest.CallTool(t, s, "gmail_compose_preview", map[string]interface{}{
		"to": "a@b.com", "subject": "Notes", "body": "b", "attachmentPath": path,
	})
	if !res.IsError || !strings.Contains(res.Text, "attachmentPath is not supported") {
		t.Errorf("result = %+v, want the path to be rejected", res)
	}
	for _, leaked := range []string{"SECRET-REFRESH", base64.StdEncoding.EncodeToString([]byte(secret))} {
		if strings.Contains(res.Text, leaked) {
			t.Errorf("result leaks the file content: %s", res.Text)
		}
	}
}

func TestComposePreview_Errors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{
			name: "missing to",
			args: map[string]interface{}{"subject": "s", "body": "b"},
			want: "to is missing",
		},
		{
			name: "missing body",
			args: map[string]interface{}{"to": "a@b.com", "subject": "s"},
			want: "body is missing",
		},
		{
			name: "attachment without name",
			args: map[string]interface{}{"to": "a@b.com", "subject": "s", "body": "b", "attachmentContent": "aGk="},
			want: "attachmentName is required",
		},
		{
			name: "invalid base64",
			args: map[string]interface{}{"to": "a@b.com", "subject": "s", "body": "b", "attachmentContent": "***", "attachmentName": "x.txt"},
			want: "not valid base64",
		},
		{
			name: "missing to is reported before the attachment",
			args: map[string]interface{}{"subject": "s", "body": "b", "attachmentContent": "***", "attachmentName": "x.txt"},
			want: "to is missing",
		},
		{
			name: "missing subject with a local path",
			args: map[string]interface{}{"to": "a@b.com", "body": "b", "attachmentPath": "/does/not/exist"},
			want: "subject is missing",
		},
	}

	sc := toolstest.NewServerContext(t, toolstest.Setup{})
	s := toolstest.NewMCPServer()
	if err := RegisterGmailTools(s, sc, true); err != nil {
		t.Fatal(err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := toolstest.CallTool(t, s, "gmail_compose_preview", tt.args)
			if !res.IsError {
				t.Fatalf("expected error result, got %s", res.Text)
			}
			if !strings.Contains(res.Text, tt.want) {
				t.Errorf("error = %q, want it to contain %q", res.Text, tt.want)
			}
		})
	}
}

func TestSendEmail(t *testing.T) {
	var body []byte
	sc := toolstest.NewServerContext(t, toolstest.Setup{
		Token: "tok",
		Yolo:  true,
		Servers: gmailEndpoint(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/gmail/v1/users/me/messages/send" {
				http.NotFound(w, r)
				return
			}
			body, _ = io.ReadAll(r.Body)
			toolstest.WriteJSON(w, map[string]interface{}{"id": "sent-1", "threadId": "t-1"})
		}),
	})
	s := toolstest.NewMCPServer()
	if err := RegisterGmailTools(s, sc, false); err != nil {
		t.Fatal(err)
	}

	res := toolstest.CallTool(t, s, "gmail_send_email", map[string]interface{}{
		"to": "a@b.com", "subject": "Hi", "body": "Hello",
	})
	if res.IsError {
		t.Fatalf("unexpected error result: %s", res.Text)
	}
	if !strings.Contains(res.Text, "Message ID: sent-1") {
		t.Errorf("result = %q", res.Text)
	}

	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	want := mimemail.Encode("To: a@b.com\nSubject: Hi\n\nHello")
	if payload["raw"] != want {
		t.Errorf("raw = %q, want %q", payload["raw"], want)
	}
}

func TestSendEmail_MissingFieldMakesNoRequest(t *testing.T) {
	var calls int32
	sc := toolstest.NewServerContext(t, toolstest.Setup{
		Token: "tok",
		Yolo:  true,
		Servers: gmailEndpoint(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			toolstest.WriteJSON(w, map[string]interface{}{"id": "x"})
		}),
	})
	s := toolstest.NewMCPServer()
	if err := RegisterGmailTools(s, sc, false); err != nil {
		t.Fatal(err)
	}

	res := toolstest.CallTool(t, s, "gmail_send_email", map[string]interface{}{
		"to": "a@b.com", "body": "Hello",
	})
	if !res.IsError || !strings.Contains(res.Text, "subject is missing") {
		t.Errorf("result = %+v, want missing subject", res)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("Gmail was called %d times", n)
	}
}

func TestSendEmail_NoToken(t *testing.T) {
	sc := toolstest.NewServerContext(t, toolstest.Setup{Yolo: true})
	s := toolstest.NewMCPServer()
	if err := RegisterGmailTools(s, sc, false); err != nil {
		t.Fatal(err)
	}

	res := toolstest.CallTool(t, s, "gmail_send_email", map[string]interface{}{
		"to": "a@b.com", "subject": "Hi", "body": "Hello", "account": "work",
	})
	if !res.IsError {
		t.Fatal("expected error result")
	}
	for _, want := range []string{`account "work"`, "accounts.google.com", "google_save_auth_code"} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("result %q does not contain %q", res.Text, want)
		}
	}
}

func TestListAndGetMessages(t *testing.T) {
	sc := toolstest.NewServerContext(t, toolstest.Setup{
		Token: "tok",
		Servers: gmailEndpoint(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/gmail/v1/users/me/messages":
				toolstest.WriteJSON(w, map[string]interface{}{
					"messages": []map[string]string{{"id": "m1", "threadId": "t1"}},
				})
			case "/gmail/v1/users/me/messages/m1":
				if r.URL.Query().Get("format") == "full" {
					toolstest.WriteJSON(w, map[string]interface{}{
						"id":      "m1",
						"payload": map[string]interface{}{"headers": []map[string]string{{"name": "Subject", "value": "Empty"}}},
					})
					return
				}
				toolstest.WriteJSON(w, map[string]interface{}{
					"id": "m1",
					"payload": map[string]interface{}{"headers": []map[string]string{
						{"name": "Subject", "value": "Hello"},
						{"name": "From", "value": "x@y.com"},
					}},
				})
			default:
				http.NotFound(w, r)
			}
		}),
	})
	s := toolstest.NewMCPServer()
	if err := RegisterGmailTools(s, sc, true); err != nil {
		t.Fatal(err)
	}

	res := toolstest.CallTool(t, s, "gmail_list_messages", map[string]interface{}{"maxResults": 5})
	if res.IsError {
		t.Fatalf("list failed: %s", res.Text)
	}
	if !strings.Contains(res.Text, `"subject": "Hello"`) || !strings.Contains(res.Text, `"count": 1`) {
		t.Errorf("list result = %s", res.Text)
	}

	res = toolstest.CallTool(t, s, "gmail_get_message", map[string]interface{}{"messageId": "m1"})
	if res.IsError {
		t.Fatalf("get failed: %s", res.Text)
	}
	if !strings.Contains(res.Text, `"body": "No content"`) {
		t.Errorf("get result = %s", res.Text)
	}

	res = toolstest.CallTool(t, s, "gmail_get_message", map[string]interface{}{})
	if !res.IsError || !strings.Contains(res.Text, "messageId is required") {
		t.Errorf("missing id result = %+v", res)
	}
}
