package compare

import (
	"strings"
	"time"
)

// Placeholder shown for metadata fields the provider did not return.
const NotAvailable = "N/A"

// Metadata keys filled in by the providers.
const (
	KeyLongName    = "longName"
	KeyShortName   = "shortName"
	KeyIndustry    = "industry"
	KeySector      = "sector"
	KeyExchange    = "exchange"
	KeyCurrency    = "currency"
	KeyQuoteType   = "quoteType"
	KeyMarketCap   = "marketCap"
	KeyCountry     = "country"
	KeyWebsite     = "website"
	KeyCEO         = "ceo"
	KeyEmployees   = "employees"
	KeyDescription = "description"
)

type Field string

const (
	Open   Field = "Open"
	Close  Field = "Close"
	High   Field = "High"
	Low    Field = "Low"
	Volume Field = "Volume"
)

// Fields in the order the comparison charts are drawn.
var Fields = []Field{Open, Close, High, Low, Volume}

// One trading day.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

func (b Bar) Value(f Field) float64 {
	switch f {
	case Open:
		return b.Open
	case High:
		return b.High
	case Low:
		return b.Low
	case Close:
		return b.Close
	case Volume:
		return float64(b.Volume)
	}
	return 0
}

// PriceSeries holds the daily bars of one symbol, oldest first.
type PriceSeries struct {
	Symbol string
	Bars   []Bar
}

func (s PriceSeries) Len() int { return len(s.Bars) }

func (s PriceSeries) Empty() bool { return len(s.Bars) == 0 }

// Metadata is whatever descriptive fields the provider returned for a symbol.
// There is no fixed schema, so reads go through Get.
type Metadata map[string]string

// Get returns the value for key, or NotAvailable when it is missing or blank.
func (m Metadata) Get(key string) string {
	v, ok := m[key]
	if !ok || strings.TrimSpace(v) == "" {
		return NotAvailable
	}
	return v
}

func (m Metadata) Has(key string) bool {
	return m.Get(key) != NotAvailable
}

// Merge copies the fields of other that m does not already have.
func (m Metadata) Merge(other Metadata) {
	for k, v := range other {
		if strings.TrimSpace(v) == "" || m.Has(k) {
			continue
		}
		m[k] = v
	}
}

// DateRange is the half open interval [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

const DateLayout = "2006-01-02"

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Valid reports whether the range can contain any trading day at all.
func (r DateRange) Valid() bool {
	return r.Start.Before(r.End)
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + " → " + r.End.Format(DateLayout)
}

// ParseQueries splits the comma separated company names typed by the user.
func ParseQueries(input string) []string {
	var queries []string
	for _, name := range strings.Split(input, ",") {
		if name = strings.TrimSpace(name); name != "" {
			queries = append(queries, name)
		}
	}
	return queries
}
