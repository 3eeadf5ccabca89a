package compare

// ResultSet pairs the price series and metadata of every symbol fetched in one run.
// Put is the only writer, so both maps always share the same keys.
type ResultSet struct {
	order    []string
	prices   map[string]PriceSeries
	metadata map[string]Metadata
}

func NewResultSet() *ResultSet {
	return &ResultSet{
		prices:   make(map[string]PriceSeries),
		metadata: make(map[string]Metadata),
	}
}

// Put records the data of symbol. Putting a symbol again replaces its data but
// keeps the position it was first inserted at.
func (rs *ResultSet) Put(symbol string, series PriceSeries, meta Metadata) {
	if _, ok := rs.prices[symbol]; !ok {
		rs.order = append(rs.order, symbol)
	}
	if meta == nil {
		meta = Metadata{}
	}
	series.Symbol = symbol
	rs.prices[symbol] = series
	rs.metadata[symbol] = meta
}

// Symbols in insertion order.
func (rs *ResultSet) Symbols() []string {
	out := make([]string, len(rs.order))
	copy(out, rs.order)
	return out
}

func (rs *ResultSet) Prices(symbol string) (PriceSeries, bool) {
	s, ok := rs.prices[symbol]
	return s, ok
}

func (rs *ResultSet) Metadata(symbol string) (Metadata, bool) {
	m, ok := rs.metadata[symbol]
	return m, ok
}

func (rs *ResultSet) Len() int { return len(rs.order) }

func (rs *ResultSet) Empty() bool { return len(rs.order) == 0 }
