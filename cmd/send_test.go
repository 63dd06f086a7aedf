package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gapidemo/internal/mimemail"
)

func TestRunSend_DryRun(t *testing.T) {
	var out bytes.Buffer
	err := runSend(context.Background(), &out, sendOptions{
		Draft:  mimemail.Draft{To: "a@example.com", Subject: "Hello", Body: "Hi there"},
		DryRun: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "To: a@example.com\nSubject: Hello\n\nHi there\n", out.String())
}

func TestRunSend_DryRunRaw(t *testing.T) {
	draft := mimemail.Draft{To: "a@example.com", Subject: "Hello", Body: "Hi there"}

	var out bytes.Buffer
	err := runSend(context.Background(), &out, sendOptions{Draft: draft, DryRun: true, PrintRaw: true})
	require.NoError(t, err)

	raw := strings.TrimSpace(out.String())
	assert.NotContains(t, raw, "=")
	decoded, err := mimemail.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "To: a@example.com\nSubject: Hello\n\nHi there", decoded)
}

func TestRunSend_DryRunAttachment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("attached"), 0600))

	var out bytes.Buffer
	err := runSend(context.Background(), &out, sendOptions{
		Draft:      mimemail.Draft{To: "a@example.com", Subject: "Files", Body: "See attached"},
		AttachPath: path,
		DryRun:     true,
	})
	require.NoError(t, err)

	msg := out.String()
	assert.Contains(t, msg, "Content-Type: multipart/mixed; boundary=")
	assert.Contains(t, msg, `Content-Disposition: attachment; filename="notes.txt"`)
	assert.Contains(t, msg, "YXR0YWNoZWQ=")
}

func TestRunSend_MissingField(t *testing.T) {
	tests := []struct {
		name    string
		draft   mimemail.Draft
		wantErr string
	}{
		{
			name:    "missing to",
			draft:   mimemail.Draft{Subject: "s", Body: "b"},
			wantErr: "--to is required",
		},
		{
			name:    "missing subject",
			draft:   mimemail.Draft{To: "a@example.com", Body: "b"},
			wantErr: "--subject is required",
		},
		{
			name:    "missing body",
			draft:   mimemail.Draft{To: "a@example.com", Subject: "s"},
			wantErr: "--body is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, dryRun := range []bool{true, false} {
				var out bytes.Buffer
				err := runSend(context.Background(), &out, sendOptions{Draft: tt.draft, DryRun: dryRun})
				require.Error(t, err)
				assert.Contains(t, err.Error(), "please fill in the email form")
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Empty(t, out.String())
			}
		})
	}
}

func TestRunSend_MissingAttachment(t *testing.T) {
	var out bytes.Buffer
	err := runSend(context.Background(), &out, sendOptions{
		Draft:      mimemail.Draft{To: "a@example.com", Subject: "s", Body: "b"},
		AttachPath: filepath.Join(t.TempDir(), "missing.pdf"),
		DryRun:     true,
	})
	assert.Error(t, err)
}

func TestRunSend_FormCheckedBeforeAttachment(t *testing.T) {
	var out bytes.Buffer
	err := runSend(context.Background(), &out, sendOptions{
		Draft:      mimemail.Draft{Subject: "s", Body: "b"},
		AttachPath: filepath.Join(t.TempDir(), "missing.pdf"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "please fill in the email form: --to is required")
	assert.NotContains(t, err.Error(), "missing.pdf")
}

func TestReadBody(t *testing.T) {
	got, err := readBody(strings.NewReader("from stdin"), "-")
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	path := filepath.Join(t.TempDir(), "body.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0600))
	got, err = readBody(nil, path)
	require.NoError(t, err)
	assert.Equal(t, "from file", got)

	_, err = readBody(nil, filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
