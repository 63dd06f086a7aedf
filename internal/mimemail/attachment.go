package mimemail

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const (
	// MaxAttachmentSize is the largest attachment Gmail accepts (25MB).
	MaxAttachmentSize = 25 * 1024 * 1024

	defaultMimeType = "application/octet-stream"
)

// ReadAttachment loads the file at path into an Attachment.
// The name is the base name of path and the MIME type is derived from the
// extension, falling back to content sniffing.
func ReadAttachment(ctx context.Context, path string) (*Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("failed to read attachment: %s is a directory", path)
	}
	if info.Size() > MaxAttachmentSize {
		return nil, fmt.Errorf("attachment size %d exceeds maximum size %d", info.Size(), MaxAttachmentSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := filepath.Base(path)
	return &Attachment{
		Name:     name,
		MimeType: DetectMimeType(name, content),
		Content:  content,
	}, nil
}

// DetectMimeType returns the bare media type for a file, without parameters.
func DetectMimeType(name string, content []byte) string {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		return mediaType(byExt)
	}
	if len(content) > 0 {
		return mediaType(http.DetectContentType(content))
	}
	return defaultMimeType
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || mt == "" {
		return defaultMimeType
	}
	return mt
}
