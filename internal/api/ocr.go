package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cs-ladder/internal/config"

	"github.com/valyala/fasthttp"
)

// OCRClient relays a scoreboard screenshot to the external text-extraction
// service and returns the recognized text lines. The service itself is an
// external collaborator; this client only speaks its JSON contract.
type OCRClient struct {
	url    string
	client *fasthttp.Client
}

type ocrResponse struct {
	Lines []string `json:"lines"`
}

func NewOCRClient(cfg *config.Config) *OCRClient {
	return &OCRClient{
		url: cfg.OCRServiceURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     10,
			ReadTimeout:         30 * time.Second,
			WriteTimeout:        30 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// Enabled reports whether an extraction service is configured.
func (c *OCRClient) Enabled() bool {
	return c.url != ""
}

// ExtractText posts raw image bytes and returns the recognized lines.
func (c *OCRClient) ExtractText(ctx context.Context, image []byte) ([]string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/octet-stream")
	req.SetBody(image)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("OCR API error: %d", resp.StatusCode())
	}

	var result ocrResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode OCR response: %w", err)
	}
	return result.Lines, nil
}
