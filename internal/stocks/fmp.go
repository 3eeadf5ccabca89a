package stocks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tickertape/internal/compare"
	"tickertape/internal/shared"
)

// A search hit from Financial Modeling Prep.
type Suggestion struct {
	Symbol            string `json:"symbol"`
	Name              string `json:"name"`
	Currency          string `json:"currency"`
	StockExchange     string `json:"stockExchange"`
	ExchangeShortName string `json:"exchangeShortName"`
}

type fmpProfile struct {
	Symbol            string  `json:"symbol"`
	CompanyName       string  `json:"companyName"`
	Currency          string  `json:"currency"`
	ExchangeShortName string  `json:"exchangeShortName"`
	Industry          string  `json:"industry"`
	Sector            string  `json:"sector"`
	Country           string  `json:"country"`
	Website           string  `json:"website"`
	Description       string  `json:"description"`
	CEO               string  `json:"ceo"`
	MktCap            float64 `json:"mktCap"`
	FullTimeEmployees string  `json:"fullTimeEmployees"`
}

// FMPClient calls the Financial Modeling Prep REST API.
type FMPClient struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

var (
	_ compare.Resolver       = (*FMPClient)(nil)
	_ compare.MetadataSource = (*FMPClient)(nil)
)

// A zero timeout means requests never time out.
func NewFMPClient(baseURL, apiKey string, timeout time.Duration) *FMPClient {
	return &FMPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *FMPClient) get(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("apikey", c.APIKey)
	u := fmt.Sprintf("%s%s?%s", c.BaseURL, path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fmp request %s: %w", path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			shared.LoggerFrom(ctx).Warn("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fmp %s: %w %d", path, ErrStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("fmp decode %s: %w", path, err)
	}
	return nil
}

// Search returns every listed security matching query.
func (c *FMPClient) Search(ctx context.Context, query string) ([]Suggestion, error) {
	q := url.Values{}
	// NOTE: url.Values escapes characters like spaces so the request doesn't break.
	q.Set("query", query)

	var list []Suggestion
	if err := c.get(ctx, "/search", q, &list); err != nil {
		return nil, err
	}
	shared.LoggerFrom(ctx).Infof("Got %d stock suggestions for %q", len(list), query)
	return list, nil
}

// Resolve returns the symbol of the best search hit for query.
func (c *FMPClient) Resolve(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", nil
	}
	list, err := c.Search(ctx, query)
	if err != nil {
		return "", err
	}
	for _, s := range list {
		// exact ticker matches beat name matches
		if strings.EqualFold(s.Symbol, query) {
			return s.Symbol, nil
		}
	}
	if len(list) == 0 {
		return "", nil
	}
	return list[0].Symbol, nil
}

// Metadata returns the company profile of symbol.
func (c *FMPClient) Metadata(ctx context.Context, symbol string) (compare.Metadata, error) {
	var profiles []fmpProfile
	if err := c.get(ctx, "/profile/"+url.PathEscape(symbol), url.Values{}, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("fmp profile %s: %w", symbol, ErrNotFound)
	}

	p := profiles[0]
	meta := compare.Metadata{
		compare.KeyLongName:    p.CompanyName,
		compare.KeyIndustry:    p.Industry,
		compare.KeySector:      p.Sector,
		compare.KeyExchange:    p.ExchangeShortName,
		compare.KeyCurrency:    p.Currency,
		compare.KeyCountry:     p.Country,
		compare.KeyWebsite:     p.Website,
		compare.KeyCEO:         p.CEO,
		compare.KeyEmployees:   p.FullTimeEmployees,
		compare.KeyDescription: p.Description,
	}
	if p.MktCap > 0 {
		meta[compare.KeyMarketCap] = strconv.FormatFloat(p.MktCap, 'f', 0, 64)
	}
	return meta, nil
}
