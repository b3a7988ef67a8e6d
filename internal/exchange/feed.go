// Package exchange keeps the public and owned exchange feeds in sync with
// the backend and applies owned-item mutations.
package exchange

import (
	"context"
	"fmt"

	"github.com/studx/homefeed/internal/model"
)

// Lister retrieves exchange collections. An empty userID means the public feed.
type Lister interface {
	ListExchanges(ctx context.Context, userID string) ([]model.ExchangeOffer, error)
}

// Fetcher retrieves the public and owned feeds. It makes one attempt per
// call and never retries.
type Fetcher struct {
	src Lister
}

// NewFetcher creates a fetcher reading from src.
func NewFetcher(src Lister) *Fetcher {
	return &Fetcher{src: src}
}

// FetchPublic returns the full public feed, newest first. Any failure is
// reported as ErrServerUnreachable.
func (f *Fetcher) FetchPublic(ctx context.Context) ([]model.ExchangeOffer, error) {
	offers, err := f.src.ListExchanges(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServerUnreachable, err)
	}
	return Normalize(offers), nil
}

// FetchOwned returns the offers owned by identifier, newest first. With an
// empty identifier it makes no call and reports fetched=false.
func (f *Fetcher) FetchOwned(ctx context.Context, identifier string) (offers []model.ExchangeOffer, fetched bool, err error) {
	if identifier == "" {
		return nil, false, nil
	}
	offers, err = f.src.ListExchanges(ctx, identifier)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %w", ErrServerUnreachable, err)
	}
	return Normalize(offers), true, nil
}

// Normalize turns a collection in arrival order into presentation order:
// most recently added first, unique by id. When an id repeats, its latest
// arrival wins.
func Normalize(offers []model.ExchangeOffer) []model.ExchangeOffer {
	out := make([]model.ExchangeOffer, 0, len(offers))
	seen := make(map[string]struct{}, len(offers))
	for i := len(offers) - 1; i >= 0; i-- {
		o := offers[i]
		if _, dup := seen[o.ID]; dup {
			continue
		}
		seen[o.ID] = struct{}{}
		out = append(out, o)
	}
	return out
}
