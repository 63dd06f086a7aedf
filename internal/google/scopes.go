package google

import (
	calendar "google.golang.org/api/calendar/v3"
	drive "google.golang.org/api/drive/v3"
	gmail "google.golang.org/api/gmail/v1"
	sheets "google.golang.org/api/sheets/v4"
	vision "google.golang.org/api/vision/v1"
)

// DefaultOAuthScopes are the scopes requested by the login flow.
//
// The scopes provide access to:
//   - OpenID profile and email (user info)
//   - Calendar: create and delete events
//   - Drive: full access (search, upload, delete)
//   - Cloud Platform: Vision text detection
//   - Sheets: append rows
//   - Gmail: full access (read and send)
var DefaultOAuthScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	calendar.CalendarEventsScope,
	drive.DriveScope,
	vision.CloudPlatformScope,
	sheets.SpreadsheetsScope,
	gmail.MailGoogleComScope,
}
