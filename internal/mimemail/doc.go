// Package mimemail builds the raw email payload accepted by the Gmail send endpoint.
//
// A Draft is turned into a message in one of two shapes:
//
//   - without an attachment, a bare "To"/"Subject" header block followed by the body,
//     joined with LF line endings
//   - with an attachment, a multipart/mixed message with a text/plain part and a
//     base64 attachment part, joined with CRLF line endings
//
// The message is then encoded with Encode into unpadded base64url, which is the
// value of the "raw" field of the send request body (see Payload).
//
// # Boundaries
//
// Multipart boundaries are produced by a BoundaryGenerator. The default generator
// returns "boundary-" followed by 13 random base-36 characters. Tests and previews
// inject a fixed token with WithBoundaryGenerator(StaticBoundary("...")) so that
// the output is byte-for-byte reproducible.
//
// # Example Usage
//
//	raw, err := mimemail.NewComposer().Raw(mimemail.Draft{
//		To:      "a@b.com",
//		Subject: "Hi",
//		Body:    "Hello",
//	})
//	if err != nil {
//		return err
//	}
//	_ = mimemail.NewPayload(raw)
package mimemail
