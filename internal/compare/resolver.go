package compare

import (
	"context"
	"strings"
)

// Resolver maps a free text company name to a ticker symbol. An unrecognised
// name yields "" and a nil error; errors are reserved for network or provider failures.
type Resolver interface {
	Resolve(ctx context.Context, query string) (string, error)
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(ctx context.Context, query string) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context, query string) (string, error) {
	return f(ctx, query)
}

// ChainResolver asks each resolver in turn and returns the first symbol found.
// If nothing resolves and some resolver failed, the first failure is returned.
type ChainResolver []Resolver

func (c ChainResolver) Resolve(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", nil
	}

	var firstErr error
	for _, r := range c {
		if r == nil {
			continue
		}
		symbol, err := r.Resolve(ctx, query)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if symbol != "" {
			return symbol, nil
		}
	}
	return "", firstErr
}

// Lookup resolves query and treats any failure as unresolved.
func Lookup(ctx context.Context, r Resolver, query string) string {
	symbol, err := r.Resolve(ctx, query)
	if err != nil {
		return ""
	}
	return symbol
}
