package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/quizrewards/internal/domain/model"
)

// RewardsDependencies defines the interface for payout previews.
type RewardsDependencies interface {
	Plan(ctx context.Context, kind model.Kind, period string) (model.Plan, error)
	Periods(ctx context.Context, kind model.Kind) ([]string, error)
}

// RewardsHandler handles reward preview requests.
type RewardsHandler struct {
	deps RewardsDependencies
}

// NewRewardsHandler creates a new rewards handler.
func NewRewardsHandler(deps RewardsDependencies) *RewardsHandler {
	return &RewardsHandler{deps: deps}
}

type previewRequest struct {
	Kind   string `validate:"required,kind"`
	Period string `validate:"required,datetime=2006-01-02"`
}

// HandlePreview handles GET /rewards/{kind}/preview?period=YYYY-MM-DD requests.
// The plan is computed but never applied.
func (h *RewardsHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	req := previewRequest{Kind: chi.URLParam(r, "kind"), Period: r.URL.Query().Get("period")}
	if fields, err := validateRequest(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: err.Error(), Fields: fields})
		return
	}

	kind, _ := model.ParseKind(req.Kind)
	plan, err := h.deps.Plan(r.Context(), kind, req.Period)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type periodsRequest struct {
	Kind string `validate:"required,kind"`
}

type periodsResponse struct {
	Kind    string   `json:"kind"`
	Periods []string `json:"periods"`
}

// HandlePeriods handles GET /rewards/{kind}/periods requests.
func (h *RewardsHandler) HandlePeriods(w http.ResponseWriter, r *http.Request) {
	req := periodsRequest{Kind: chi.URLParam(r, "kind")}
	if fields, err := validateRequest(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: err.Error(), Fields: fields})
		return
	}

	kind, _ := model.ParseKind(req.Kind)
	periods, err := h.deps.Periods(r.Context(), kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, periodsResponse{Kind: string(kind), Periods: periods})
}
