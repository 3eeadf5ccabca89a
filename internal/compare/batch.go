package compare

import (
	"context"
	"errors"
	"fmt"

	"tickertape/internal/shared"
)

type Status int

const (
	Fetched Status = iota
	Unresolved
	Failed
)

func (s Status) String() string {
	switch s {
	case Fetched:
		return "fetched"
	case Unresolved:
		return "unresolved"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Outcome is what happened to one company name of a batch.
type Outcome struct {
	Query  string
	Symbol string
	Status Status
	Err    error
}

// Message is the warning shown to the user for a failed outcome.
func (o Outcome) Message() string {
	return fmt.Sprintf("Couldn't fetch data for %s: %v", o.Query, o.Err)
}

// Report is the result of a single comparison run.
type Report struct {
	Results  *ResultSet
	Outcomes []Outcome
}

// Warnings returns the outcomes that failed.
func (r Report) Warnings() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == Failed {
			out = append(out, o)
		}
	}
	return out
}

func (r Report) Unresolved() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Status == Unresolved {
			out = append(out, o.Query)
		}
	}
	return out
}

// Progress is sent before each company name is processed.
type Progress struct {
	Index int
	Total int
	Query string
}

var errPanicked = errors.New("unexpected failure")

// Comparer runs a comparison batch, one company name at a time.
type Comparer struct {
	Resolver Resolver
	Fetcher  *Fetcher
	Progress func(Progress)
}

// Compare resolves and fetches every query in order. A failing query is recorded
// as an outcome and never stops the rest of the batch.
func (c *Comparer) Compare(ctx context.Context, queries []string, r DateRange) Report {
	report := Report{Results: NewResultSet()}
	logger := shared.LoggerFrom(ctx)

	for i, query := range queries {
		if c.Progress != nil {
			c.Progress(Progress{Index: i, Total: len(queries), Query: query})
		}

		outcome := c.compareOne(ctx, query, r, report.Results)
		switch outcome.Status {
		case Unresolved:
			logger.Infof("No symbol found for %q", query)
		case Failed:
			logger.Warn(outcome.Message())
		case Fetched:
			logger.Infof("Fetched %s for %q", outcome.Symbol, query)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report
}

func (c *Comparer) compareOne(ctx context.Context, query string, r DateRange, rs *ResultSet) (outcome Outcome) {
	outcome = Outcome{Query: query}

	defer func() {
		if rec := recover(); rec != nil {
			outcome.Status = Failed
			outcome.Err = fmt.Errorf("%w: %v", errPanicked, rec)
		}
	}()

	symbol, err := c.Resolver.Resolve(ctx, query)
	if err != nil {
		outcome.Status = Failed
		outcome.Err = fmt.Errorf("resolve: %w", err)
		return outcome
	}
	if symbol == "" {
		outcome.Status = Unresolved
		return outcome
	}
	outcome.Symbol = symbol

	series, meta, err := c.Fetcher.Fetch(ctx, symbol, r)
	if err != nil {
		outcome.Status = Failed
		outcome.Err = err
		return outcome
	}

	rs.Put(symbol, series, meta)
	outcome.Status = Fetched
	return outcome
}
