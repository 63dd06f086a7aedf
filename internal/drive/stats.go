package drive

import (
	"fmt"
	"math"
	"strings"
)

// File categories used for statistics.
const (
	CategoryImage       = "Image"
	CategoryPDF         = "PDF"
	CategoryGoogleSheet = "Google Sheets"
	CategoryGoogleDoc   = "Google Docs"
	CategoryWord        = "Word"
	CategoryOther       = "Other"
)

// Classify maps a MIME type to a display category.
// Checks run in order, so Office documents whose type contains "document"
// are reported as Google Docs.
func Classify(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return CategoryImage
	case mimeType == FileTypePDF:
		return CategoryPDF
	case strings.Contains(mimeType, "spreadsheet"):
		return CategoryGoogleSheet
	case strings.Contains(mimeType, "document"):
		return CategoryGoogleDoc
	case strings.Contains(mimeType, "word"):
		return CategoryWord
	}
	return CategoryOther
}

// ComputeStats groups files by category in order of first appearance.
func ComputeStats(files []*FileInfo) []TypeStat {
	var stats []TypeStat
	index := make(map[string]int)

	for _, f := range files {
		if f == nil {
			continue
		}
		cat := Classify(f.MimeType)
		i, ok := index[cat]
		if !ok {
			i = len(stats)
			index[cat] = i
			stats = append(stats, TypeStat{Type: cat})
		}
		stats[i].Count++
		stats[i].Bytes += f.Size
	}

	for i := range stats {
		stats[i].SizeMB = math.Round(float64(stats[i].Bytes)/(1024*1024)*100) / 100
	}
	return stats
}

// FormatSize renders a byte count the way the file table shows it:
// "-" for zero, KB with one decimal, or MB with two decimals above 1024 KB.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "-"
	}
	kb := float64(bytes) / 1024
	if kb > 1024 {
		return fmt.Sprintf("%.2f MB", kb/1024)
	}
	return fmt.Sprintf("%.1f KB", kb)
}

// PreviewLink returns the embeddable preview URL of a file.
func PreviewLink(fileID string) string {
	return "https://drive.google.com/file/d/" + fileID + "/preview"
}
