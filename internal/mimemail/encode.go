package mimemail

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Payload is the JSON body of a Gmail send request.
type Payload struct {
	Raw string `json:"raw"`
}

// NewPayload wraps an encoded message.
func NewPayload(raw string) Payload {
	return Payload{Raw: raw}
}

// Encode returns the base64url form of msg with the padding removed.
// This is standard base64 with "+" replaced by "-", "/" by "_" and trailing "=" dropped.
func Encode(msg string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(msg))
}

// Decode reverses Encode. Padded input is accepted as well.
func Decode(raw string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(raw, "="))
	if err != nil {
		return "", fmt.Errorf("failed to decode raw message: %w", err)
	}
	return string(data), nil
}
