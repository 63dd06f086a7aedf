package mimemail

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "padding stripped",
			input:    "Hello",
			expected: "SGVsbG8",
		},
		{
			name:     "plus becomes dash",
			input:    "??>",
			expected: "Pz8-",
		},
		{
			name:     "slash becomes underscore",
			input:    "???",
			expected: "Pz8_",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Encode(tt.input))
		})
	}
}

func TestEncode_MatchesSubstitutedStandardBase64(t *testing.T) {
	inputs := []string{
		"To: a@b.com\nSubject: Hi\n\nHello",
		"Tiếng Việt có dấu",
		string([]byte{0xfb, 0xff, 0xfe}),
		strings.Repeat("x", 1000),
	}

	for _, in := range inputs {
		std := base64.StdEncoding.EncodeToString([]byte(in))
		want := strings.TrimRight(strings.NewReplacer("+", "-", "/", "_").Replace(std), "=")

		got := Encode(in)
		assert.Equal(t, want, got)
		assert.NotContains(t, got, "=")
		assert.NotContains(t, got, "+")
		assert.NotContains(t, got, "/")
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	c := NewComposer(WithBoundaryGenerator(StaticBoundary("boundary-roundtrip01")))
	msg, err := c.Compose(Draft{
		To:      "người.nhận@example.com",
		Subject: "Hóa đơn",
		Body:    "Xin chào\nDòng hai",
		Attachment: &Attachment{
			Name:     "receipt.png",
			MimeType: "image/png",
			Content:  []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a},
		},
	})
	require.NoError(t, err)

	decoded, err := Decode(Encode(msg))
	require.NoError(t, err)
	assert.Equal(t, msg, decoded)
}

func TestDecode_AcceptsPadding(t *testing.T) {
	decoded, err := Decode("SGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "Hello", decoded)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode("not base64!")
	assert.Error(t, err)
}

func TestPayload_JSON(t *testing.T) {
	data, err := json.Marshal(NewPayload("SGVsbG8"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"raw":"SGVsbG8"}`, string(data))
}
