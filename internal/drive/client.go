package drive

import (
	"context"
	"fmt"
	"io"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teemow/gapidemo/internal/google"
)

const (
	// DefaultMaxResults is the page size used when SearchOptions.MaxResults is unset.
	DefaultMaxResults = 50
	maxPageSize       = 1000

	fileFields = "id, name, mimeType, size, modifiedTime, webViewLink, iconLink, thumbnailLink, parents"
)

// Client wraps the Google Drive API service
type Client struct {
	service *drive.Service
	account string
	limiter *google.RateLimiter
}

// NewClient creates a Drive client authenticated with cred.
func NewClient(ctx context.Context, cred *google.Credential, opts ...option.ClientOption) (*Client, error) {
	httpClient, err := cred.HTTPClient()
	if err != nil {
		return nil, fmt.Errorf("no valid Google credential: %w", err)
	}

	driveService, err := drive.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Client{
		service: driveService,
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

// SearchFiles lists non-trashed files matching the keyword and file type.
// It returns the files and the token of the next page, if any.
func (c *Client) SearchFiles(ctx context.Context, opts SearchOptions) ([]*FileInfo, string, error) {
	pageSize := opts.MaxResults
	if pageSize <= 0 {
		pageSize = DefaultMaxResults
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	call := c.service.Files.List().
		Context(ctx).
		Q(BuildSearchQuery(opts.Keyword, opts.FileType)).
		PageSize(int64(pageSize)).
		Fields(googleapi.Field("nextPageToken, files(" + fileFields + ")"))
	if opts.OrderBy != "" {
		call = call.OrderBy(opts.OrderBy)
	}
	if opts.PageToken != "" {
		call = call.PageToken(opts.PageToken)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}
	fileList, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("failed to search files: %w", google.WrapError(c.limiter.Observe(err)))
	}

	files := make([]*FileInfo, len(fileList.Files))
	for i, f := range fileList.Files {
		files[i] = convertToFileInfo(f)
	}
	return files, fileList.NextPageToken, nil
}

// GetFile retrieves metadata for a specific file
func (c *Client) GetFile(ctx context.Context, fileID string) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	file, err := c.service.Files.Get(fileID).
		Context(ctx).
		Fields(googleapi.Field(fileFields)).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, google.WrapError(c.limiter.Observe(err)))
	}

	return convertToFileInfo(file), nil
}

// UploadFile uploads a file to Google Drive
func (c *Client) UploadFile(ctx context.Context, name string, content io.Reader, options *UploadOptions) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("file name is required")
	}
	if content == nil {
		return nil, fmt.Errorf("file content is required")
	}

	file := &drive.File{
		Name: name,
	}

	if options != nil {
		file.Parents = options.ParentFolders
		file.Description = options.Description
		file.MimeType = options.MimeType
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	driveFile, err := c.service.Files.Create(file).
		Context(ctx).
		Media(content, googleapi.ContentType(file.MimeType)).
		Fields(googleapi.Field(fileFields)).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", google.WrapError(c.limiter.Observe(err)))
	}

	return convertToFileInfo(driveFile), nil
}

// DeleteFile permanently deletes a file from Google Drive
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("fileID is required")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := c.service.Files.Delete(fileID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", fileID, google.WrapError(c.limiter.Observe(err)))
	}
	return nil
}

// convertToFileInfo converts a Drive API file to FileInfo
func convertToFileInfo(f *drive.File) *FileInfo {
	if f == nil {
		return nil
	}

	info := &FileInfo{
		ID:            f.Id,
		Name:          f.Name,
		MimeType:      f.MimeType,
		Size:          f.Size,
		WebViewLink:   f.WebViewLink,
		IconLink:      f.IconLink,
		ThumbnailLink: f.ThumbnailLink,
		Parents:       f.Parents,
	}

	if f.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			info.ModifiedTime = t
		}
	}

	return info
}
