package vision

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"github.com/teemow/gapidemo/internal/google"
)

const (
	// FeatureTextDetection is the Vision feature used for receipts.
	FeatureTextDetection = "TEXT_DETECTION"

	// MaxImageSize is the largest image accepted by images:annotate.
	MaxImageSize = 20 * 1024 * 1024
)

// Client wraps the Cloud Vision images service
type Client struct {
	images  *vision.ImagesService
	limiter *google.RateLimiter
}

// NewClient creates a Vision client authenticated with cred.
func NewClient(ctx context.Context, cred *google.Credential, opts ...option.ClientOption) (*Client, error) {
	httpClient, err := cred.HTTPClient()
	if err != nil {
		return nil, fmt.Errorf("no valid Google credential: %w", err)
	}
	return newClient(ctx, append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)...)
}

// NewClientWithAPIKey creates a Vision client that authenticates with an API key.
func NewClientWithAPIKey(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("vision API key is required")
	}
	return newClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
}

func newClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vision service: %w", err)
	}
	return &Client{images: vision.NewImagesService(svc)}, nil
}

// WithRateLimiter makes every API call wait on l.
func (c *Client) WithRateLimiter(l *google.RateLimiter) *Client {
	c.limiter = l
	return c
}

// DetectText runs text detection on an image and returns the full recognised
// text, or "" when the image contains none.
func (c *Client) DetectText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("image is empty")
	}
	if len(image) > MaxImageSize {
		return "", fmt.Errorf("image size %d exceeds maximum size %d", len(image), MaxImageSize)
	}

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{
			{
				Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
				Features: []*vision.Feature{{Type: FeatureTextDetection}},
			},
		},
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	resp, err := c.images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to annotate image: %w", google.WrapError(c.limiter.Observe(err)))
	}

	if len(resp.Responses) == 0 {
		return "", nil
	}
	r := resp.Responses[0]
	if r.Error != nil && r.Error.Message != "" {
		return "", fmt.Errorf("text detection failed: %s", r.Error.Message)
	}
	if r.FullTextAnnotation == nil {
		return "", nil
	}
	return r.FullTextAnnotation.Text, nil
}
