package exchange

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/studx/homefeed/internal/api"
	"github.com/studx/homefeed/internal/metrics"
	"github.com/studx/homefeed/internal/model"
	"github.com/studx/homefeed/internal/session"
)

// Mutator issues mutating calls to the backend.
type Mutator interface {
	DeleteExchange(ctx context.Context, id, token string) (string, error)
	EditExchange(ctx context.Context, id string, req api.EditRequest) (string, error)
	Logout(ctx context.Context, email, token string) (string, error)
}

// Reconciler is the part of the Controller mutations report back to.
type Reconciler interface {
	ApplyConfirmedDelete(ctx context.Context, id string)
	RefreshAll(ctx context.Context)
}

// Executor runs owned-item mutations. Each call makes at most one request;
// preventing double submission is left to the caller.
type Executor struct {
	api        Mutator
	reconciler Reconciler
	logger     *slog.Logger
	now        func() time.Time
}

// NewExecutor creates an executor reporting to r.
func NewExecutor(m Mutator, r Reconciler, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{api: m, reconciler: r, logger: logger, now: time.Now}
}

// DeleteOwned deletes one owned offer. On success the offer is removed from
// the owned feed and the server's message is returned.
func (e *Executor) DeleteOwned(ctx context.Context, id, token string) (string, error) {
	if id == "" || token == "" {
		metrics.RecordMutation("delete", metrics.OutcomeInvalid)
		return "", &MutationError{Kind: MissingContext, Detail: "could not get the necessary information to delete"}
	}

	msg, err := e.api.DeleteExchange(ctx, id, token)
	if err != nil {
		return "", e.fail("delete", err)
	}
	e.logger.Info("exchange deleted", "id", id, "response", msg)
	metrics.RecordMutation("delete", metrics.OutcomeOK)

	e.reconciler.ApplyConfirmedDelete(ctx, id)
	return msg, nil
}

// EditOwned replaces one owned offer with fields. Unset dates default to
// today. The owned feed is never patched locally: on success both feeds are re-fetched before
// returning.
func (e *Executor) EditOwned(ctx context.Context, id, token string, fields model.EditFields) (string, error) {
	if id == "" || token == "" {
		metrics.RecordMutation("edit", metrics.OutcomeInvalid)
		return "", &MutationError{Kind: MissingContext, Detail: "could not get the necessary information to edit"}
	}
	students, err := strconv.Atoi(strings.TrimSpace(fields.QuantityStudents))
	if err != nil || students <= 0 {
		metrics.RecordMutation("edit", metrics.OutcomeInvalid)
		return "", &MutationError{Kind: InvalidInput, Detail: "the number of students must be greater than 0"}
	}
	if !fields.AcademicLevel.Valid() {
		metrics.RecordMutation("edit", metrics.OutcomeInvalid)
		return "", &MutationError{Kind: InvalidInput, Detail: "unknown academic level " + strconv.Quote(string(fields.AcademicLevel))}
	}

	today := e.now()
	if fields.BeginDate.IsZero() {
		fields.BeginDate = today
	}
	if fields.EndDate.IsZero() {
		fields.EndDate = today
	}

	req := api.EditRequest{
		Token:            token,
		NativeLanguage:   fields.NativeLanguage,
		TargetLanguage:   fields.TargetLanguage,
		AcademicLevel:    fields.AcademicLevel,
		QuantityStudents: students,
		BeginDate:        api.FormatDate(fields.BeginDate),
		EndDate:          api.FormatDate(fields.EndDate),
	}
	msg, err := e.api.EditExchange(ctx, id, req)
	if err != nil {
		return "", e.fail("edit", err)
	}
	e.logger.Info("exchange edited", "id", id, "response", msg)
	metrics.RecordMutation("edit", metrics.OutcomeOK)

	e.reconciler.RefreshAll(ctx)
	return msg, nil
}

// Logout ends the session and clears the stored entries. On failure the
// entries are kept.
func (e *Executor) Logout(ctx context.Context, creds model.Credentials, store session.KV) (string, error) {
	if creds.Token == "" {
		metrics.RecordMutation("logout", metrics.OutcomeInvalid)
		return "", &MutationError{Kind: MissingContext, Detail: "there is no active session"}
	}

	msg, err := e.api.Logout(ctx, creds.Identifier, creds.Token)
	if err != nil {
		return "", e.fail("logout", err)
	}
	if err := session.Clear(store); err != nil {
		return "", err
	}
	metrics.RecordMutation("logout", metrics.OutcomeOK)
	return msg, nil
}

func (e *Executor) fail(kind string, err error) error {
	var se *api.StatusError
	if errors.As(err, &se) {
		e.logger.Warn(kind+" rejected", "status", se.StatusCode, "response", se.Body)
		metrics.RecordMutation(kind, metrics.OutcomeRejected)
		return &MutationError{Kind: Rejected, Detail: se.Body, Err: err}
	}
	e.logger.Warn(kind+" failed", "error", err)
	metrics.RecordMutation(kind, metrics.OutcomeUnreachable)
	return &MutationError{Kind: Unreachable, Detail: err.Error(), Err: err}
}
