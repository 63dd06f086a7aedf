package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/gapidemo/internal/logging"
	"github.com/teemow/gapidemo/internal/sheets"
	"github.com/teemow/gapidemo/internal/vision"
)

type scanOptions struct {
	Account       string
	AccessToken   string
	ImagePath     string
	Sample        bool
	Append        bool
	SpreadsheetID string
	Range         string
}

func newScanReceiptCmd() *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan-receipt [image]",
		Short: "Read a receipt image with Cloud Vision",
		Long: `Detect the text of a receipt image with the Cloud Vision API and extract
the store, date and total. With --append the receipt is added as a row to
the configured spreadsheet.

Without a saved login the Vision API key (GOOGLE_VISION_API_KEY) is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.ImagePath = args[0]
			}
			if opts.ImagePath == "" && !opts.Sample {
				return fmt.Errorf("please choose a receipt image (or use --sample)")
			}
			if opts.Account == "" {
				opts.Account = cfg.Google.DefaultAccount
			}
			if opts.SpreadsheetID == "" {
				opts.SpreadsheetID = cfg.Sheets.SpreadsheetID
			}
			if opts.Range == "" {
				opts.Range = cfg.Sheets.Range
			}
			return runScanReceipt(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Account, "account", "", "Account to use (default: the configured default account)")
	cmd.Flags().BoolVar(&opts.Sample, "sample", false, "Use the built-in sample receipt instead of an image")
	cmd.Flags().BoolVar(&opts.Append, "append", false, "Append the receipt to the spreadsheet")
	cmd.Flags().StringVar(&opts.SpreadsheetID, "spreadsheet-id", "", "Spreadsheet to append to. Can also use GAPIDEMO_SPREADSHEET_ID env var.")
	cmd.Flags().StringVar(&opts.Range, "range", "", "A1 range to append to (default: "+sheets.DefaultRange+")")
	addAccessTokenFlag(cmd, &opts.AccessToken)

	return cmd
}

func runScanReceipt(ctx context.Context, out io.Writer, opts scanOptions) error {
	if opts.Append && opts.SpreadsheetID == "" {
		return fmt.Errorf("--spreadsheet-id is required with --append (no default spreadsheet is configured)")
	}

	sc, err := newCLIContext(ctx, opts.AccessToken)
	if err != nil {
		return err
	}
	defer func() { _ = sc.Shutdown() }()

	text := vision.SampleReceiptText
	if !opts.Sample {
		image, err := os.ReadFile(opts.ImagePath)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		client, err := sc.VisionClientForAccount(ctx, opts.Account)
		if err != nil {
			return loginHint(opts.Account, err)
		}
		text, err = client.DetectText(ctx, image)
		if err != nil {
			return err
		}
	}

	receipt := vision.ParseReceipt(text)
	fmt.Fprintf(out, "Store: %s\nDate:  %s\nTotal: %s\n", orDash(receipt.Store), orDash(receipt.Date), orDash(receipt.Total))
	if !opts.Append {
		return nil
	}
	if receipt.Empty() {
		return fmt.Errorf("no receipt fields recognised, nothing to append")
	}

	client, err := sc.SheetsClientForAccount(ctx, opts.Account)
	if err != nil {
		return loginHint(opts.Account, err)
	}
	result, err := client.AppendRows(ctx, opts.SpreadsheetID, opts.Range, [][]interface{}{sheets.ReceiptRow(receipt, time.Now())})
	if err != nil {
		return err
	}

	logging.WithOperation(sc.Logger(), "sheets.append").Info("receipt appended",
		logging.Account(opts.Account),
		"range", result.UpdatedRange,
	)
	fmt.Fprintf(out, "\nAppended to %s\n", result.UpdatedRange)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
