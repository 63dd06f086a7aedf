package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/gapidemo/internal/logging"
	"github.com/teemow/gapidemo/internal/mimemail"
)

type sendOptions struct {
	Account     string
	AccessToken string
	Draft       mimemail.Draft
	AttachPath  string
	DryRun      bool
	PrintRaw    bool
}

func newSendCmd() *cobra.Command {
	var (
		opts     sendOptions
		bodyFile string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send an email through Gmail",
		Long: `Compose an email with an optional attachment and send it through the
Gmail API of the logged-in account.

With --dry-run the composed MIME message is printed instead of sent;
--raw prints the base64url payload Gmail would receive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bodyFile != "" {
				body, err := readBody(cmd.InOrStdin(), bodyFile)
				if err != nil {
					return err
				}
				opts.Draft.Body = body
			}
			if opts.Account == "" {
				opts.Account = cfg.Google.DefaultAccount
			}
			return runSend(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Draft.To, "to", "", "Recipient email address")
	cmd.Flags().StringVar(&opts.Draft.Subject, "subject", "", "Subject line")
	cmd.Flags().StringVar(&opts.Draft.Body, "body", "", "Plain text body")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "Read the body from a file ('-' for stdin)")
	cmd.Flags().StringVar(&opts.AttachPath, "attach", "", "Path of a file to attach")
	cmd.Flags().StringVar(&opts.Account, "account", "", "Account to send from (default: the configured default account)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the composed message instead of sending it")
	cmd.Flags().BoolVar(&opts.PrintRaw, "raw", false, "With --dry-run, print the encoded raw payload")
	addAccessTokenFlag(cmd, &opts.AccessToken)

	return cmd
}

func readBody(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(data), nil
}

func runSend(ctx context.Context, out io.Writer, opts sendOptions) error {
	draft := opts.Draft
	if err := draft.Validate(); err != nil {
		return formError(err)
	}

	if opts.AttachPath != "" {
		attachment, err := mimemail.ReadAttachment(ctx, opts.AttachPath)
		if err != nil {
			return err
		}
		draft.Attachment = attachment
	}

	if opts.DryRun {
		return printDraft(out, draft, opts.PrintRaw)
	}

	sc, err := newCLIContext(ctx, opts.AccessToken)
	if err != nil {
		return err
	}
	defer func() { _ = sc.Shutdown() }()

	client, err := sc.GmailClientForAccount(ctx, opts.Account)
	if err != nil {
		return loginHint(opts.Account, err)
	}

	sent, err := client.SendDraft(ctx, draft)
	if err != nil {
		return formError(err)
	}

	logging.WithOperation(sc.Logger(), "gmail.send").Info("email sent",
		logging.Account(opts.Account),
		logging.Recipient(draft.To),
	)
	fmt.Fprintf(out, "Email sent successfully (message ID: %s)\n", sent.ID)
	return nil
}

// printDraft writes the composed message, or its encoded payload when raw is set.
func printDraft(out io.Writer, draft mimemail.Draft, raw bool) error {
	encoded, err := mimemail.NewComposer().Raw(draft)
	if err != nil {
		return formError(err)
	}
	if raw {
		_, err = fmt.Fprintln(out, encoded)
		return err
	}

	msg, err := mimemail.Decode(encoded)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, msg)
	return err
}

// formError asks the user to complete the draft when a field is missing.
func formError(err error) error {
	var missing *mimemail.MissingFieldError
	if errors.As(err, &missing) {
		return fmt.Errorf("please fill in the email form: --%s is required", missing.Field)
	}
	return err
}
