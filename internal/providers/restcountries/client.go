package restcountries

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
const Source = "restcountries"

const fetchTimeout = 15 * time.Second

// Module provides the country directory client.
var Module = fx.Provide(New)

type Currency struct {
	Code string `json:"code"`
}

// Country is the subset of the directory payload the pipeline consumes.
type Country struct {
	Name       string     `json:"name"`
	Capital    string     `json:"capital"`
	Region     string     `json:"region"`
	Population int64      `json:"population"`
	Flag       string     `json:"flag"`
	Currencies []Currency `json:"currencies"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *zap.Logger
}

func New(cfg config.Config, log *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: fetchTimeout},
		baseURL:    cfg.CountriesAPIBaseURL,
		log:        log.Named("restcountries"),
	}
}

// Fetch retrieves the full country directory. Non-success status and
// timeouts surface as upstream unavailability.
func (c *Client) Fetch(ctx context.Context) ([]Country, error) {
	url := c.baseURL + "/v2/all?fields=name,capital,region,population,flag,currencies"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
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

	var countries []Country
	if err := json.NewDecoder(resp.Body).Decode(&countries); err != nil {
		return nil, fmt.Errorf("decode country directory: %w", err)
	}

	c.log.Debug("fetched country directory", zap.Int("count", len(countries)))
	return countries, nil
}
