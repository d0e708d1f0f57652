// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/quizrewards/internal/adapters/http/swagger"
	"github.com/okian/quizrewards/internal/adapters/repository"
	service "github.com/okian/quizrewards/internal/app"
	"github.com/okian/quizrewards/internal/domain/model"
	"github.com/okian/quizrewards/internal/domain/selection"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	// Today is the date used when a request omits one.
	Today() string
	DailyQuestions(ctx context.Context, userID, date string) ([]string, error)
	QuestionDistribution(ctx context.Context, date string, userLimit int) (selection.Histogram, error)

	// Plan previews payouts. Nothing is written.
	Plan(ctx context.Context, kind model.Kind, period string) (model.Plan, error)
	Periods(ctx context.Context, kind model.Kind) ([]string, error)

	// AuditTournament compares a tournament's expected pool with its rewards.
	AuditTournament(ctx context.Context, kind model.TournamentKind, id int64) (model.TournamentAudit, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	questionsHandler  *QuestionsHandler
	rewardsHandler    *RewardsHandler
	tournamentHandler *TournamentHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(deps),
		questionsHandler:  NewQuestionsHandler(deps),
		rewardsHandler:    NewRewardsHandler(deps),
		tournamentHandler: NewTournamentHandler(deps),
	}
}

// Routes returns a router with every endpoint registered.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(LoggingMiddleware)
	s.Register(r)
	swagger.Register(r)
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Handle("/metrics", s.healthHandler.MetricsHandler())
	r.Get("/stats", s.statsHandler.HandleStats)

	r.Get("/daily/{userID}", s.questionsHandler.HandleDaily)
	r.Get("/distribution", s.questionsHandler.HandleDistribution)

	r.Route("/rewards/{kind}", func(r chi.Router) {
		r.Get("/preview", s.rewardsHandler.HandlePreview)
		r.Get("/periods", s.rewardsHandler.HandlePeriods)
	})
	r.Get("/tournaments/{kind}/{id}/audit", s.tournamentHandler.HandleAudit)
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, model.ErrUnknownKind),
		errors.Is(err, repository.ErrUnknownBoard):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
