package stocks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tickertape/internal/compare"
	"tickertape/internal/shared"
)

// One day from the Tiingo end of day endpoint.
type tiingoDaily struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// TiingoClient serves daily price history from Tiingo. Used as a fallback when
// Yahoo refuses the chart request.
type TiingoClient struct {
	BaseURL string
	Token   string
	client  *http.Client
}

var _ compare.PriceSource = (*TiingoClient)(nil)

func NewTiingoClient(baseURL, token string, timeout time.Duration) *TiingoClient {
	return &TiingoClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *TiingoClient) History(ctx context.Context, symbol string, r compare.DateRange) ([]compare.Bar, error) {
	q := url.Values{}
	q.Set("startDate", r.Start.Format(compare.DateLayout))
	// endDate is inclusive on Tiingo's side, clipping happens in the fetcher
	q.Set("endDate", r.End.Format(compare.DateLayout))
	q.Set("token", c.Token)

	endpoint := fmt.Sprintf("%s/tiingo/daily/%s/prices?%s", c.BaseURL, url.PathEscape(strings.ToLower(symbol)), q.Encode())
	shared.LoggerFrom(ctx).Infof("Getting price history for %s from Tiingo", symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tiingo request %s: %w", symbol, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			shared.LoggerFrom(ctx).Warn("failed to close response body", "error", err)
		}
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("tiingo %s: %w", symbol, ErrNotFound)
	default:
		return nil, fmt.Errorf("tiingo %s: %w %d", symbol, ErrStatus, resp.StatusCode)
	}

	var days []tiingoDaily
	if err := json.NewDecoder(resp.Body).Decode(&days); err != nil {
		return nil, fmt.Errorf("tiingo decode %s: %w", symbol, err)
	}

	bars := make([]compare.Bar, 0, len(days))
	for _, d := range days {
		ts := d.Date.UTC()
		bars = append(bars, compare.Bar{
			Date:   time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
			Open:   d.Open,
			High:   d.High,
			Low:    d.Low,
			Close:  d.Close,
			Volume: d.Volume,
		})
	}
	return bars, nil
}
