package exchange

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/studx/homefeed/internal/api"
	"github.com/studx/homefeed/internal/model"
)

// fakeBackend records every call and delegates to optional handlers. The
// list handler receives the per-userID call index so tests can script
// individual settlements.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string
	lists map[string]int

	list     func(userID string, n int) ([]model.ExchangeOffer, error)
	me       func(token string) (*api.User, error)
	deleteFn func(id, token string) (string, error)
	editFn   func(id string, req api.EditRequest) (string, error)
	logoutFn func(email, token string) (string, error)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{lists: make(map[string]int)}
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) ListExchanges(ctx context.Context, userID string) ([]model.ExchangeOffer, error) {
	f.mu.Lock()
	n := f.lists[userID]
	f.lists[userID]++
	f.calls = append(f.calls, "list:"+userID)
	h := f.list
	f.mu.Unlock()
	if h == nil {
		return nil, nil
	}
	return h(userID, n)
}

func (f *fakeBackend) Me(ctx context.Context, token string) (*api.User, error) {
	f.record("me:" + token)
	if f.me == nil {
		return &api.User{}, nil
	}
	return f.me(token)
}

func (f *fakeBackend) DeleteExchange(ctx context.Context, id, token string) (string, error) {
	f.record("delete:" + id)
	if f.deleteFn == nil {
		return "deleted", nil
	}
	return f.deleteFn(id, token)
}

func (f *fakeBackend) EditExchange(ctx context.Context, id string, req api.EditRequest) (string, error) {
	f.record("edit:" + id)
	if f.editFn == nil {
		return "edited", nil
	}
	return f.editFn(id, req)
}

func (f *fakeBackend) Logout(ctx context.Context, email, token string) (string, error) {
	f.record("logout:" + email)
	if f.logoutFn == nil {
		return "bye", nil
	}
	return f.logoutFn(email, token)
}

// listCount returns how many list calls were made for userID.
func (f *fakeBackend) listCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists[userID]
}

// count returns how many recorded calls start with prefix.
func (f *fakeBackend) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func offer(id, owner string) model.ExchangeOffer {
	return model.ExchangeOffer{
		ID:               id,
		OwnerID:          owner,
		University:       "UPV",
		QuantityStudents: 10,
		AcademicLevel:    model.LevelB1,
		NativeLanguage:   "Spanish",
		TargetLanguage:   "English",
	}
}

func ids(offers []model.ExchangeOffer) []string {
	out := make([]string, 0, len(offers))
	for _, o := range offers {
		out = append(out, o.ID)
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type listResult struct {
	offers []model.ExchangeOffer
	err    error
}

// snapshotRecorder captures SaveSnapshot calls.
type snapshotRecorder struct {
	mu    sync.Mutex
	saved map[string][]model.ExchangeOffer
}

func (s *snapshotRecorder) SaveSnapshot(feed string, offers []model.ExchangeOffer, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = make(map[string][]model.ExchangeOffer)
	}
	s.saved[feed] = offers
	return nil
}

func (s *snapshotRecorder) get(feed string) []model.ExchangeOffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved[feed]
}
