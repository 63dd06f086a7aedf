package mimemail

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Draft is the content of an email about to be sent.
type Draft struct {
	To         string
	Subject    string
	Body       string
	Attachment *Attachment
}

// Attachment is a single file attached to a Draft.
type Attachment struct {
	Name     string
	MimeType string
	Content  []byte
}

// Composer turns drafts into MIME messages.
type Composer struct {
	boundary BoundaryGenerator
}

// Option configures a Composer.
type Option func(*Composer)

// WithBoundaryGenerator replaces the random multipart boundary generator.
func WithBoundaryGenerator(gen BoundaryGenerator) Option {
	return func(c *Composer) {
		if gen != nil {
			c.boundary = gen
		}
	}
}

// NewComposer creates a Composer. Without options it uses RandomBoundary(DefaultBoundaryLength).
func NewComposer(opts ...Option) *Composer {
	c := &Composer{
		boundary: RandomBoundary(DefaultBoundaryLength),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate checks that to, subject and body are present, in that order.
func (d Draft) Validate() error {
	switch {
	case d.To == "":
		return &MissingFieldError{Field: "to"}
	case d.Subject == "":
		return &MissingFieldError{Field: "subject"}
	case d.Body == "":
		return &MissingFieldError{Field: "body"}
	}
	return nil
}

// Compose builds the MIME message for d.
//
// Without an attachment the lines are joined with "\n". With an attachment
// the multipart message is joined with "\r\n". Gmail accepts both, and callers
// depend on the exact bytes of each shape, so the two are kept as they are.
// The body is inserted verbatim in both shapes: a body containing "\n" keeps
// its bare line feeds inside a multipart message.
func (c *Composer) Compose(d Draft) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}

	if d.Attachment == nil {
		return strings.Join([]string{
			"To: " + d.To,
			"Subject: " + d.Subject,
			"",
			d.Body,
		}, "\n"), nil
	}

	boundary := c.boundary()
	att := d.Attachment

	lines := []string{
		"To: " + d.To,
		"Subject: " + d.Subject,
		fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"", boundary),
		"MIME-Version: 1.0",
		"",
		"--" + boundary,
		`Content-Type: text/plain; charset="UTF-8"`,
		"MIME-Version: 1.0",
		"Content-Transfer-Encoding: 7bit",
		"",
		d.Body,
		"",
		"--" + boundary,
		fmt.Sprintf("Content-Type: %s; name=\"%s\"", att.MimeType, att.Name),
		"MIME-Version: 1.0",
		"Content-Transfer-Encoding: base64",
		fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"", att.Name),
		"",
		base64.StdEncoding.EncodeToString(att.Content),
		"",
		"--" + boundary + "--",
	}

	return strings.Join(lines, "\r\n"), nil
}

// Raw composes d and returns the encoded payload value.
func (c *Composer) Raw(d Draft) (string, error) {
	msg, err := c.Compose(d)
	if err != nil {
		return "", err
	}
	return Encode(msg), nil
}

var defaultComposer = NewComposer()

// Compose builds the MIME message for d with a random boundary.
func Compose(d Draft) (string, error) {
	return defaultComposer.Compose(d)
}
