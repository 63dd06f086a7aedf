package sheets

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/teemow/gapidemo/internal/google"
	"github.com/teemow/gapidemo/internal/vision"
)

const (
	// DefaultRange is the A1 range rows are appended after.
	DefaultRange = "Sheet1!A1"

	valueInputOption = "USER_ENTERED"
	insertDataOption = "INSERT_ROWS"
)

// AppendResult reports where appended rows landed.
type AppendResult struct {
	SpreadsheetID string `json:"spreadsheetId"`
	UpdatedRange  string `json:"updatedRange"`
	UpdatedRows   int64  `json:"updatedRows"`
	UpdatedCells  int64  `json:"updatedCells"`
}

// Client wraps the Sheets values service
type Client struct {
	values  *sheets.SpreadsheetsValuesService
	account string
	limiter *google.RateLimiter
}

// NewClient creates a Sheets client authenticated with cred.
func NewClient(ctx context.Context, cred *google.Credential, opts ...option.ClientOption) (*Client, error) {
	httpClient, err := cred.HTTPClient()
	if err != nil {
		return nil, fmt.Errorf("no valid Google credential: %w", err)
	}

	svc, err := sheets.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}

	return &Client{
		values:  svc.Spreadsheets.Values,
		account: cred.Account,
	}, nil
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// WithRateLimiter makes every API call wait on l.
func (c *Client) WithRateLimiter(l *google.RateLimiter) *Client {
	c.limiter = l
	return c
}

// AppendRows appends rows after the table found in rng. Values are parsed as
// if typed by a user, and new rows are inserted rather than overwriting.
func (c *Client) AppendRows(ctx context.Context, spreadsheetID, rng string, rows [][]interface{}) (*AppendResult, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("at least one row is required")
	}
	if rng == "" {
		rng = DefaultRange
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.values.Append(spreadsheetID, rng, &sheets.ValueRange{Values: rows}).
		ValueInputOption(valueInputOption).
		InsertDataOption(insertDataOption).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to append rows: %w", google.WrapError(c.limiter.Observe(err)))
	}

	result := &AppendResult{SpreadsheetID: resp.SpreadsheetId}
	if resp.Updates != nil {
		result.UpdatedRange = resp.Updates.UpdatedRange
		result.UpdatedRows = resp.Updates.UpdatedRows
		result.UpdatedCells = resp.Updates.UpdatedCells
	}
	return result, nil
}

// ReceiptRow lays out a receipt as [scanned at, store, date, total].
func ReceiptRow(r vision.Receipt, scannedAt time.Time) []interface{} {
	return []interface{}{scannedAt.Format("2006-01-02 15:04:05"), r.Store, r.Date, r.Total}
}

// StringRow converts cell strings to a row.
func StringRow(cells []string) []interface{} {
	row := make([]interface{}, len(cells))
	for i, v := range cells {
		row[i] = v
	}
	return row
}
