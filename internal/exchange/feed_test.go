package exchange

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studx/homefeed/internal/api"
	"github.com/studx/homefeed/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"reverse arrival order", []string{"1", "2", "3"}, []string{"3", "2", "1"}},
		{"latest duplicate wins", []string{"1", "2", "1", "3"}, []string{"3", "1", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in []model.ExchangeOffer
			for _, id := range tt.in {
				in = append(in, offer(id, ""))
			}
			got := Normalize(in)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFetcher_FetchPublic(t *testing.T) {
	fb := newFakeBackend()
	fb.list = func(userID string, n int) ([]model.ExchangeOffer, error) {
		return []model.ExchangeOffer{offer("1", "x"), offer("2", "y")}, nil
	}

	got, err := NewFetcher(fb).FetchPublic(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, ids(got))
	assert.Equal(t, 1, fb.listCount(""))
}

func TestFetcher_FetchPublic_MapsFailures(t *testing.T) {
	for name, cause := range map[string]error{
		"status":    &api.StatusError{StatusCode: 500, Body: "boom"},
		"transport": errors.New("connection refused"),
	} {
		t.Run(name, func(t *testing.T) {
			fb := newFakeBackend()
			fb.list = func(string, int) ([]model.ExchangeOffer, error) { return nil, cause }

			_, err := NewFetcher(fb).FetchPublic(context.Background())
			assert.ErrorIs(t, err, ErrServerUnreachable)
			assert.ErrorIs(t, err, cause)
		})
	}
}

func TestFetcher_FetchOwned_EmptyIdentifierIsNoop(t *testing.T) {
	fb := newFakeBackend()

	offers, fetched, err := NewFetcher(fb).FetchOwned(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, fetched)
	assert.Nil(t, offers)
	assert.Empty(t, fb.calls)
}

func TestFetcher_FetchOwned(t *testing.T) {
	fb := newFakeBackend()
	fb.list = func(userID string, n int) ([]model.ExchangeOffer, error) {
		return []model.ExchangeOffer{offer("1", userID)}, nil
	}

	offers, fetched, err := NewFetcher(fb).FetchOwned(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.True(t, fetched)
	assert.Equal(t, []string{"1"}, ids(offers))
	assert.Equal(t, 1, fb.listCount("a@b.com"))
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	signedIn := model.Credentials{Token: "tok", Identifier: "a@b.com"}

	t.Run("incomplete credentials make no call", func(t *testing.T) {
		for _, creds := range []model.Credentials{{}, {Token: "tok"}, {Identifier: "a@b.com"}} {
			fb := newFakeBackend()
			ident, ok := NewResolver(fb, testLogger()).Resolve(ctx, creds)
			assert.False(t, ok)
			assert.Empty(t, ident.Identifier)
			assert.Equal(t, model.DefaultDisplayName, ident.DisplayName)
			assert.Zero(t, fb.count("me:"))
		}
	})

	t.Run("success uses the returned name", func(t *testing.T) {
		fb := newFakeBackend()
		fb.me = func(token string) (*api.User, error) { return &api.User{Name: "Ana"}, nil }

		ident, ok := NewResolver(fb, testLogger()).Resolve(ctx, signedIn)
		assert.True(t, ok)
		assert.Equal(t, model.Identity{DisplayName: "Ana", Identifier: "a@b.com"}, ident)
		assert.Equal(t, 1, fb.count("me:tok"))
	})

	t.Run("empty name falls back to placeholder", func(t *testing.T) {
		fb := newFakeBackend()
		ident, ok := NewResolver(fb, testLogger()).Resolve(ctx, signedIn)
		assert.True(t, ok)
		assert.Equal(t, model.DefaultDisplayName, ident.DisplayName)
	})

	t.Run("failure keeps the local identifier", func(t *testing.T) {
		fb := newFakeBackend()
		fb.me = func(string) (*api.User, error) { return nil, &api.StatusError{StatusCode: 401} }

		ident, ok := NewResolver(fb, testLogger()).Resolve(ctx, signedIn)
		assert.False(t, ok)
		assert.Equal(t, model.Identity{DisplayName: model.DefaultDisplayName, Identifier: "a@b.com"}, ident)
	})
}
