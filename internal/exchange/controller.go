package exchange

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/studx/homefeed/internal/metrics"
	"github.com/studx/homefeed/internal/model"
)

// Backend is everything the Controller reads from the server.
type Backend interface {
	Lister
	IdentitySource
}

// SnapshotWriter persists the last good content of a feed.
type SnapshotWriter interface {
	SaveSnapshot(feed string, offers []model.ExchangeOffer, fetchedAt time.Time) error
}

// View is a copy of the Controller's state for the presentation layer.
//
// Owned is empty both when the user has no offers and when the owned fetch
// never succeeded; OwnedLoaded tells the two apart.
type View struct {
	Loading           bool                  `json:"loading"`
	HasError          bool                  `json:"hasError"`
	Refreshing        bool                  `json:"refreshing"`
	Public            []model.ExchangeOffer `json:"public"`
	Owned             []model.ExchangeOffer `json:"owned"`
	OwnedLoaded       bool                  `json:"ownedLoaded"`
	DisplayName       string                `json:"displayName"`
	Identifier        string                `json:"identifier,omitempty"`
	IdentityConfirmed bool                  `json:"identityConfirmed"`
}

// Options configures a Controller.
type Options struct {
	Credentials model.Credentials
	Snapshots   SnapshotWriter
	Logger      *slog.Logger

	// OnChange receives a View after every state change, in order. It must
	// not call Controller operations synchronously.
	OnChange func(View)
}

// Controller sequences the feed fetches and reconciles both feeds after
// mutations.
//
// Overlapping fetches of the same feed are not cancelled or de-duplicated:
// whichever settles last wins, regardless of which started first. The one
// exception is a confirmed delete, which later-settling fetches that started
// before it cannot undo.
type Controller struct {
	fetcher   *Fetcher
	resolver  *Resolver
	creds     model.Credentials
	snapshots SnapshotWriter
	logger    *slog.Logger
	onChange  func(View)
	now       func() time.Time

	mu         sync.Mutex
	notifyMu   sync.Mutex
	view       View
	refreshes  int
	epoch      uint64
	inflight   map[uint64]struct{}
	tombstones map[string]uint64

	bg sync.WaitGroup
}

// NewController creates a Controller in the Loading state.
func NewController(backend Backend, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		fetcher:   NewFetcher(backend),
		resolver:  NewResolver(backend, logger),
		creds:     opts.Credentials,
		snapshots: opts.Snapshots,
		logger:    logger,
		onChange:  opts.OnChange,
		now:       time.Now,
		view: View{
			Loading:     true,
			Public:      []model.ExchangeOffer{},
			Owned:       []model.ExchangeOffer{},
			DisplayName: model.DefaultDisplayName,
		},
		inflight:   make(map[uint64]struct{}),
		tombstones: make(map[string]uint64),
	}
}

// View returns the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cloneLocked()
}

// Initialize resolves the identity and fetches the public feed concurrently.
// The owned feed is fetched once the identity yields an identifier.
// It returns when every fetch it started has settled.
func (c *Controller) Initialize(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error {
		c.fetchPublic(ctx, false)
		return nil
	})
	g.Go(func() error {
		if id := c.resolveIdentity(ctx); id != "" {
			c.fetchOwned(ctx, id)
		}
		return nil
	})
	_ = g.Wait()
}

// RefreshAll re-fetches both feeds concurrently. Refreshing stays set until
// both fetches of every in-flight refresh have settled.
func (c *Controller) RefreshAll(ctx context.Context) {
	var id string
	c.update(func(v *View) {
		c.refreshes++
		v.Refreshing = true
		id = v.Identifier
	})
	metrics.RefreshInFlight.Inc()

	var g errgroup.Group
	g.Go(func() error {
		c.fetchPublic(ctx, true)
		return nil
	})
	g.Go(func() error {
		c.fetchOwned(ctx, id)
		return nil
	})
	_ = g.Wait()

	metrics.RefreshInFlight.Dec()
	c.update(func(v *View) {
		c.refreshes--
		v.Refreshing = c.refreshes > 0
	})
}

// ApplyConfirmedDelete removes id from the owned feed and re-fetches the
// public feed in the background. Call it only after the server confirmed
// the deletion.
func (c *Controller) ApplyConfirmedDelete(ctx context.Context, id string) {
	c.update(func(v *View) {
		c.epoch++
		c.tombstones[id] = c.epoch
		c.pruneLocked()
		v.Owned = slices.DeleteFunc(slices.Clone(v.Owned), func(o model.ExchangeOffer) bool {
			return o.ID == id
		})
	})

	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		c.fetchPublic(context.WithoutCancel(ctx), true)
	}()
}

// Wait blocks until background re-syncs started by ApplyConfirmedDelete
// have settled.
func (c *Controller) Wait() {
	c.bg.Wait()
}

func (c *Controller) resolveIdentity(ctx context.Context) string {
	ident, confirmed := c.resolver.Resolve(ctx, c.creds)
	c.update(func(v *View) {
		v.DisplayName = ident.DisplayName
		v.Identifier = ident.Identifier
		v.IdentityConfirmed = confirmed
	})
	return ident.Identifier
}

// fetchPublic runs one public fetch. A failure sets the screen error unless
// it is a background fetch and the feed is already showing good data.
func (c *Controller) fetchPublic(ctx context.Context, background bool) {
	start := c.begin()
	offers, err := c.fetcher.FetchPublic(ctx)

	var saved []model.ExchangeOffer
	c.update(func(v *View) {
		defer c.settleLocked(start)
		if err != nil {
			if background && !v.Loading && !v.HasError {
				c.logger.Warn("background exchanges fetch failed; keeping current feed", "error", err)
				return
			}
			c.logger.Warn("could not connect to server to get exchanges", "error", err)
			v.Loading = false
			v.HasError = true
			return
		}
		v.Loading = false
		v.HasError = false
		v.Public = c.withoutTombstonedLocked(offers, start)
		saved = v.Public
	})

	if err != nil {
		metrics.RecordFetch(model.FeedPublic, metrics.OutcomeError)
		return
	}
	metrics.RecordFetch(model.FeedPublic, metrics.OutcomeOK)
	c.saveSnapshot(model.FeedPublic, saved)
}

// fetchOwned runs one owned fetch. Failures are logged and leave the owned
// feed as it was.
func (c *Controller) fetchOwned(ctx context.Context, identifier string) {
	if identifier == "" {
		metrics.RecordFetch(model.FeedOwned, metrics.OutcomeSkipped)
		return
	}

	start := c.begin()
	offers, _, err := c.fetcher.FetchOwned(ctx, identifier)

	var saved []model.ExchangeOffer
	c.update(func(v *View) {
		defer c.settleLocked(start)
		if err != nil {
			c.logger.Warn("failed to get user exchanges", "error", err)
			return
		}
		v.Owned = c.withoutTombstonedLocked(offers, start)
		v.OwnedLoaded = true
		saved = v.Owned
	})

	if err != nil {
		metrics.RecordFetch(model.FeedOwned, metrics.OutcomeError)
		return
	}
	metrics.RecordFetch(model.FeedOwned, metrics.OutcomeOK)
	c.saveSnapshot(model.FeedOwned, saved)
}

func (c *Controller) saveSnapshot(feed string, offers []model.ExchangeOffer) {
	if c.snapshots == nil {
		return
	}
	if err := c.snapshots.SaveSnapshot(feed, offers, c.now()); err != nil {
		c.logger.Warn("could not save snapshot", "feed", feed, "error", err)
	}
}

// update applies fn under the state lock and delivers the resulting View.
// notifyMu is taken before mu is released so deliveries keep state order.
func (c *Controller) update(fn func(v *View)) {
	c.mu.Lock()
	fn(&c.view)
	v := c.cloneLocked()
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	if c.onChange != nil {
		c.onChange(v)
	}
}

func (c *Controller) cloneLocked() View {
	v := c.view
	v.Public = slices.Clone(c.view.Public)
	v.Owned = slices.Clone(c.view.Owned)
	return v
}

// begin registers a fetch and returns its start epoch.
func (c *Controller) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.inflight[c.epoch] = struct{}{}
	return c.epoch
}

func (c *Controller) settleLocked(start uint64) {
	delete(c.inflight, start)
	c.pruneLocked()
}

// withoutTombstonedLocked drops offers deleted after the fetch started.
func (c *Controller) withoutTombstonedLocked(offers []model.ExchangeOffer, start uint64) []model.ExchangeOffer {
	if len(c.tombstones) == 0 {
		return offers
	}
	return slices.DeleteFunc(offers, func(o model.ExchangeOffer) bool {
		deletedAt, ok := c.tombstones[o.ID]
		return ok && deletedAt > start
	})
}

// pruneLocked forgets tombstones no in-flight fetch can still contradict.
func (c *Controller) pruneLocked() {
	for id, deletedAt := range c.tombstones {
		stale := false
		for start := range c.inflight {
			if start < deletedAt {
				stale = true
				break
			}
		}
		if !stale {
			delete(c.tombstones, id)
		}
	}
}
