// Package server provides the local view-state API the presentation layer
// renders from.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/studx/homefeed/internal/exchange"
	"github.com/studx/homefeed/internal/model"
	"github.com/studx/homefeed/internal/session"
)

const dateLayout = "02-01-2006"

// Server is the view-state HTTP server.
type Server struct {
	controller *exchange.Controller
	executor   *exchange.Executor
	sessions   session.KV
	logger     *slog.Logger
	router     chi.Router
}

// New creates a new server. Credentials are read from sessions on every
// mutating request so a logout takes effect immediately.
func New(controller *exchange.Controller, executor *exchange.Executor, sessions session.KV, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		controller: controller,
		executor:   executor,
		sessions:   sessions,
		logger:     logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/home", s.handleHome)
		r.Post("/home/refresh", s.handleRefresh)
		r.Delete("/home/exchanges/{id}", s.handleDelete)
		r.Put("/home/exchanges/{id}", s.handleEdit)
		r.Post("/session/logout", s.handleLogout)
	})

	s.router = r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start initializes the controller and serves on addr until ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.controller.Initialize(gCtx)
		return nil
	})

	g.Go(func() error {
		s.logger.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.controller.Wait()
		return err
	})

	return g.Wait()
}

// --- Handlers ---

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.View())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.controller.RefreshAll(r.Context())
	writeJSON(w, http.StatusOK, s.controller.View())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	creds, ok := s.credentials(w)
	if !ok {
		return
	}
	msg, err := s.executor.DeleteOwned(r.Context(), chi.URLParam(r, "id"), creds.Token)
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse{Status: "ok", Message: msg, View: s.controller.View()})
}

// editRequest mirrors the edit form. quantityStudents is accepted as either a
// JSON number or a string so validation can reject non-numeric input.
type editRequest struct {
	NativeLanguage   string          `json:"nativeLanguage"`
	TargetLanguage   string          `json:"targetLanguage"`
	AcademicLevel    string          `json:"academicLevel"`
	QuantityStudents json.RawMessage `json:"quantityStudents"`
	BeginDate        string          `json:"beginDate"`
	EndDate          string          `json:"endDate"`
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	fields, err := req.fields()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	creds, ok := s.credentials(w)
	if !ok {
		return
	}
	msg, err := s.executor.EditOwned(r.Context(), chi.URLParam(r, "id"), creds.Token, fields)
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse{Status: "ok", Message: msg, View: s.controller.View()})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	creds, ok := s.credentials(w)
	if !ok {
		return
	}
	msg, err := s.executor.Logout(r.Context(), creds, s.sessions)
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": msg})
}

// --- Helpers ---

type mutationResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	View    exchange.View `json:"view"`
}

func (req editRequest) fields() (model.EditFields, error) {
	f := model.EditFields{
		NativeLanguage:   req.NativeLanguage,
		TargetLanguage:   req.TargetLanguage,
		AcademicLevel:    model.AcademicLevel(strings.ToUpper(strings.TrimSpace(req.AcademicLevel))),
		QuantityStudents: strings.Trim(string(req.QuantityStudents), `"`),
	}
	var err error
	if f.BeginDate, err = parseDate(req.BeginDate); err != nil {
		return f, errors.New("beginDate must be DD-MM-YYYY")
	}
	if f.EndDate, err = parseDate(req.EndDate); err != nil {
		return f, errors.New("endDate must be DD-MM-YYYY")
	}
	return f, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

func (s *Server) credentials(w http.ResponseWriter) (model.Credentials, bool) {
	creds, err := session.Load(s.sessions)
	if err != nil {
		s.logger.Error("could not read session", "error", err)
		http.Error(w, "Failed to read session", http.StatusInternalServerError)
		return creds, false
	}
	return creds, true
}

func (s *Server) writeMutationError(w http.ResponseWriter, err error) {
	var me *exchange.MutationError
	if !errors.As(err, &me) {
		s.logger.Error("mutation failed", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	status := http.StatusInternalServerError
	switch me.Kind {
	case exchange.MissingContext:
		status = http.StatusUnauthorized
	case exchange.InvalidInput:
		status = http.StatusBadRequest
	case exchange.Rejected:
		status = http.StatusBadGateway
	case exchange.Unreachable:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"status": "error", "error": me.Kind.String(), "message": me.Detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
