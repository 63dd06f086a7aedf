package vision

import (
	"regexp"
	"strings"
)

// SampleReceiptText is a recognised receipt used when no image is scanned.
const SampleReceiptText = `
        Coffee House
        2024-12-01 10:30 AM
        Latte: 40,000
        Sandwich: 60,000
        Tổng: 100,000 VND
      `

var (
	dateLinePattern  = regexp.MustCompile(`\d{2,4}[/\-.]\d{1,2}[/\-.]\d{1,2}`)
	totalLinePattern = regexp.MustCompile(`(?i)Tổng|Total`)
	amountPattern    = regexp.MustCompile(`\d+[.,]?\d*`)
)

// Receipt holds the fields extracted from a receipt.
type Receipt struct {
	Store string `json:"store"`
	Date  string `json:"date"`
	Total string `json:"total"`
}

// Empty reports whether nothing could be extracted.
func (r Receipt) Empty() bool {
	return r.Store == "" && r.Date == "" && r.Total == ""
}

// ParseReceipt extracts the store (first non-blank line), the date (first
// line containing a date) and the total (first number on the first line
// mentioning a total).
func ParseReceipt(text string) Receipt {
	var r Receipt
	totalSeen := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r.Store == "" {
			r.Store = line
		}
		if r.Date == "" && dateLinePattern.MatchString(line) {
			r.Date = line
		}
		if !totalSeen && totalLinePattern.MatchString(line) {
			totalSeen = true
			r.Total = amountPattern.FindString(line)
		}
	}
	return r
}
