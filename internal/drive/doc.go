// Package drive provides a client for the Google Drive API.
//
// This package covers the Drive features of gapidemo:
//   - Searching files by keyword and file type
//   - Uploading files with metadata
//   - Deleting files
//   - Summarising a result set by file category (count and size)
//
// Each client instance is bound to one *google.Credential.
//
// Example usage:
//
//	client, err := drive.NewClient(ctx, cred)
//	if err != nil {
//	    return err
//	}
//
//	files, err := client.SearchFiles(ctx, drive.SearchOptions{
//	    Keyword:  "report",
//	    FileType: drive.FileTypePDF,
//	})
//	if err != nil {
//	    return err
//	}
//
//	for _, s := range drive.ComputeStats(files) {
//	    fmt.Printf("%s: %d files, %.2f MB\n", s.Type, s.Count, s.SizeMB)
//	}
package drive
