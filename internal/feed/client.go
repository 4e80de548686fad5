package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yegors/vatmap/pkg/logger"
)

// Client fetches the VATSIM data feed
type Client struct {
	httpClient *http.Client
	url        string
	logger     *logger.Logger
}

// NewClient creates a new feed client
func NewClient(url string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.Named("feed-client"),
	}
}

// Fetch downloads and decodes one full feed document
func (c *Client) Fetch(ctx context.Context) (*feedData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("fetching feed data", logger.String("url", c.url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var data feedData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse feed JSON: %w", err)
	}

	c.logger.Debug("feed data fetched",
		logger.Int("pilots", len(data.Pilots)),
		logger.Int("controllers", len(data.Controllers)),
		logger.Int("atis", len(data.ATIS)))

	return &data, nil
}
