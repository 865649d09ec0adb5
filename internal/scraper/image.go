package scraper

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
)

const maxImageBytes = 5 << 20

// fetchImage downloads an image and re-encodes it as a data URI so dishes
// stay self-contained when the source page disappears.
func (s *Scraper) fetchImage(ctx context.Context, url string) (string, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("image fetch: status %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) == 0 {
		return "", fmt.Errorf("image fetch: empty body")
	}
	if len(body) > maxImageBytes {
		return "", fmt.Errorf("image fetch: %d bytes exceeds limit", len(body))
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(body)), nil
}
