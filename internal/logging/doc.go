// Package logging holds the slog conventions shared by gapidemo.
//
// Setup installs the process logger. The attribute helpers keep key names
// consistent across packages and keep personal data out of log lines:
// user emails are logged as a short hash, tokens only as their length, and
// recipients by domain.
//
//	logger := logging.WithService(slog.Default(), "gmail")
//	logger.Info("message sent",
//	    logging.Account(account),
//	    logging.Recipient(to),
//	    logging.Status(logging.StatusSuccess))
package logging
