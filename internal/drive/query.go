package drive

import (
	"fmt"
	"strings"
)

// File type filters offered by the search form.
const (
	FileTypeAll          = ""
	FileTypePDF          = "application/pdf"
	FileTypeImage        = "image/"
	FileTypeGoogleDoc    = "application/vnd.google-apps.document"
	FileTypeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	FileTypeVideo        = "video/"
	FileTypeGoogleFolder = "application/vnd.google-apps.folder"
)

// FileTypeAliases maps short names accepted by the CLI and tools to filters.
var FileTypeAliases = map[string]string{
	"all":    FileTypeAll,
	"pdf":    FileTypePDF,
	"image":  FileTypeImage,
	"doc":    FileTypeGoogleDoc,
	"docs":   FileTypeGoogleDoc,
	"sheet":  FileTypeGoogleSheet,
	"sheets": FileTypeGoogleSheet,
	"video":  FileTypeVideo,
}

// ResolveFileType turns an alias or a MIME type into a filter value.
func ResolveFileType(s string) string {
	s = strings.TrimSpace(s)
	if v, ok := FileTypeAliases[strings.ToLower(s)]; ok {
		return v
	}
	return s
}

// BuildSearchQuery returns the Drive "q" expression for keyword and fileType.
// Trashed files are always excluded. A fileType ending in "/" matches as a prefix.
func BuildSearchQuery(keyword, fileType string) string {
	clauses := []string{"trashed=false"}

	if kw := strings.TrimSpace(keyword); kw != "" {
		clauses = append(clauses, fmt.Sprintf("name contains '%s'", escapeQueryValue(kw)))
	}

	if fileType != "" {
		if strings.HasSuffix(fileType, "/") {
			clauses = append(clauses, fmt.Sprintf("mimeType contains '%s'", escapeQueryValue(fileType)))
		} else {
			clauses = append(clauses, fmt.Sprintf("mimeType='%s'", escapeQueryValue(fileType)))
		}
	}

	return strings.Join(clauses, " and ")
}

// escapeQueryValue escapes a string literal for the Drive query language.
func escapeQueryValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
