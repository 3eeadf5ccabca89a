package stocks

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"tickertape/internal/compare"
	"tickertape/internal/shared"

	"github.com/gocolly/colly"
)

// Labels on the Yahoo profile page and the metadata keys they map to.
var profileLabels = map[string]string{
	"sector":              compare.KeySector,
	"industry":            compare.KeyIndustry,
	"full time employees": compare.KeyEmployees,
	"website":             compare.KeyWebsite,
}

// ProfileScraper reads sector and industry off the Yahoo Finance profile page.
type ProfileScraper struct {
	// URL with a single %s for the symbol.
	URLTemplate string
	UserAgent   string
}

var _ compare.MetadataSource = (*ProfileScraper)(nil)

func (p *ProfileScraper) Metadata(ctx context.Context, symbol string) (compare.Metadata, error) {
	meta := compare.Metadata{}
	var scrapeErr error

	target := fmt.Sprintf(p.URLTemplate, url.PathEscape(symbol))

	opts := []func(*colly.Collector){
		// every comparison fetches afresh
		colly.AllowURLRevisit(),
	}
	if p.UserAgent != "" {
		opts = append(opts, colly.UserAgent(p.UserAgent))
	}
	c := colly.NewCollector(opts...)

	c.OnRequest(func(r *colly.Request) {
		shared.LoggerFrom(ctx).Infof("Getting company profile from %s", r.URL)
	})

	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = fmt.Errorf("profile %s: %w", symbol, err)
	})

	c.OnHTML("dt", func(e *colly.HTMLElement) {
		label := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(e.Text), ":")))
		key, ok := profileLabels[label]
		if !ok {
			return
		}
		dd := e.DOM.Next()
		if !dd.Is("dd") {
			return
		}
		if value := strings.TrimSpace(dd.Text()); value != "" {
			meta[key] = value
		}
	})

	if err := c.Visit(target); err != nil && scrapeErr == nil {
		scrapeErr = fmt.Errorf("profile %s: %w", symbol, err)
	}
	if scrapeErr != nil {
		return nil, scrapeErr
	}
	return meta, nil
}
