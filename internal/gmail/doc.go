// Package gmail provides a client for the Gmail API.
//
// This package offers the mail features of gapidemo:
//   - Listing inbox messages with their Subject, From and Date headers
//   - Reading the content of a message, preferring the HTML part over plain text
//   - Sending a draft (optionally with one attachment) through the mimemail composer
//
// Every client is bound to an explicit *google.Credential; there is no global
// logged-in user.
//
// Example usage:
//
//	client, err := gmail.NewClient(ctx, cred)
//	if err != nil {
//	    return err
//	}
//
//	messages, err := client.ListMessages(ctx, gmail.ListOptions{MaxResults: 10})
//	if err != nil {
//	    return err
//	}
//
//	sent, err := client.SendDraft(ctx, mimemail.Draft{
//	    To:      "recipient@example.com",
//	    Subject: "Hello",
//	    Body:    "This is a test email",
//	})
package gmail
