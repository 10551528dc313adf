package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/geofin/countrypulse/internal/config"
	"github.com/geofin/countrypulse/internal/providers/upstream"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Source names this provider in unavailability reports.
const Source = "open.er-api"

const fetchTimeout = 15 * time.Second

// Module provides the exchange rate client.
var Module = fx.Provide(New)

type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *zap.Logger
}

func New(cfg config.Config, log *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: fetchTimeout},
		baseURL:    cfg.ExchangeAPIBaseURL,
		log:        log.Named("exchangerate"),
	}
}

// Fetch retrieves the USD rate table keyed by currency code.
func (c *Client) Fetch(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v6/latest/USD", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, upstream.ClassifyFetchError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &upstream.Error{
			Source: Source,
			Cause:  fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var payload ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode rate table: %w", err)
	}

	c.log.Debug("fetched rate table", zap.Int("rates", len(payload.Rates)))
	return payload.Rates, nil
}
