package exchange

import (
	"context"
	"log/slog"

	"github.com/studx/homefeed/internal/api"
	"github.com/studx/homefeed/internal/model"
)

// IdentitySource answers the identity endpoint.
type IdentitySource interface {
	Me(ctx context.Context, token string) (*api.User, error)
}

// Resolver turns stored credentials into a display identity.
type Resolver struct {
	src    IdentitySource
	logger *slog.Logger
}

// NewResolver creates a resolver backed by src.
func NewResolver(src IdentitySource, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{src: src, logger: logger}
}

// Resolve returns the identity for creds and whether the identity endpoint
// confirmed it. Incomplete credentials yield an empty identifier and no call.
// When the endpoint fails, the locally known identifier is still returned
// with the placeholder display name.
func (r *Resolver) Resolve(ctx context.Context, creds model.Credentials) (model.Identity, bool) {
	if !creds.Complete() {
		r.logger.Info("no token or email saved; identity not resolved")
		return model.Identity{DisplayName: model.DefaultDisplayName}, false
	}

	ident := model.Identity{DisplayName: model.DefaultDisplayName, Identifier: creds.Identifier}
	u, err := r.src.Me(ctx, creds.Token)
	if err != nil {
		r.logger.Warn("could not get user", "error", err)
		return ident, false
	}
	if u.Name != "" {
		ident.DisplayName = u.Name
	}
	return ident, true
}
