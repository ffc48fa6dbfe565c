package partner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/creatorlink/platform/internal/daterange"
)

// DataSourceTag marks payloads fetched live from the affiliate network.
const DataSourceTag = "api"

// Client is a thin HTTP client for the affiliate network's reporting API.
// The network expects MM/DD/YYYY dates; the DateRange partner projections
// carry them so handlers never format dates themselves.
type Client struct {
	baseURL  string
	apiToken string
	client   *http.Client
	logger   *zap.Logger
}

// NewClient creates a partner network client.
func NewClient(baseURL, apiToken string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  baseURL,
		apiToken: apiToken,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// FetchEarnings retrieves the earnings report for one attribution id over
// the given window. The returned payload is tagged with live provenance.
func (c *Client) FetchEarnings(ctx context.Context, subID string, rng daterange.DateRange) (map[string]interface{}, error) {
	return c.fetch(ctx, "/reports/earnings", subID, rng)
}

// FetchRecentSales retrieves recent attributed sales for one attribution id.
func (c *Client) FetchRecentSales(ctx context.Context, subID string, rng daterange.DateRange) (map[string]interface{}, error) {
	return c.fetch(ctx, "/reports/sales", subID, rng)
}

func (c *Client) fetch(ctx context.Context, path, subID string, rng daterange.DateRange) (map[string]interface{}, error) {
	params := url.Values{}
	params.Set("subId1", subID)
	params.Set("dateStart", rng.StartDatePartner)
	params.Set("dateEnd", rng.EndDatePartner)

	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build partner request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("partner request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("partner returned status %d for %s", resp.StatusCode, path)
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode partner response: %w", err)
	}
	if payload == nil {
		// A JSON null body decodes without error but leaves the map nil.
		return nil, fmt.Errorf("partner returned null body for %s", path)
	}

	payload["dataSource"] = DataSourceTag
	c.logger.Debug("fetched partner report",
		zap.String("path", path),
		zap.String("sub_id", subID),
		zap.String("date_start", rng.StartDatePartner),
		zap.String("date_end", rng.EndDatePartner))

	return payload, nil
}
