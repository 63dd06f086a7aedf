package drive

import "time"

// FileInfo represents metadata about a file in Google Drive
type FileInfo struct {
	// ID is the unique identifier for the file
	ID string `json:"id"`

	// Name is the name of the file
	Name string `json:"name"`

	// MimeType is the MIME type of the file
	MimeType string `json:"mimeType"`

	// Size is the size of the file in bytes (Google Docs editors files report 0)
	Size int64 `json:"size,omitempty"`

	// ModifiedTime is when the file was last modified
	ModifiedTime time.Time `json:"modifiedTime"`

	// WebViewLink opens the file in a Google editor or viewer
	WebViewLink string `json:"webViewLink,omitempty"`

	// IconLink is a link to the file type icon
	IconLink string `json:"iconLink,omitempty"`

	// ThumbnailLink is a short-lived thumbnail link, if Drive generated one
	ThumbnailLink string `json:"thumbnailLink,omitempty"`

	// Parents are the IDs of the parent folders
	Parents []string `json:"parents,omitempty"`
}

// SearchOptions contains options for SearchFiles
type SearchOptions struct {
	// Keyword matches file names (Drive "name contains")
	Keyword string

	// FileType is an exact MIME type, or a prefix ending in "/" such as "image/"
	FileType string

	// MaxResults is the maximum number of files to return (default 50, max 1000)
	MaxResults int

	// OrderBy specifies the sort order, e.g. "modifiedTime desc"
	OrderBy string

	// PageToken continues a previous search
	PageToken string
}

// UploadOptions contains options for uploading a file
type UploadOptions struct {
	// ParentFolders are the IDs of parent folders where the file should be placed
	ParentFolders []string

	// Description is a short description of the file
	Description string

	// MimeType is the MIME type of the file (e.g., "application/pdf", "image/png")
	// If not specified, Drive will attempt to detect it automatically
	MimeType string
}

// TypeStat aggregates the files of one category
type TypeStat struct {
	Type   string  `json:"type"`
	Count  int     `json:"count"`
	Bytes  int64   `json:"bytes"`
	SizeMB float64 `json:"sizeMB"`
}
