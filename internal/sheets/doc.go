// Package sheets appends rows, such as scanned receipts, to a Google Sheets
// spreadsheet.
package sheets
