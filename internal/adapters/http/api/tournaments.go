package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/quizrewards/internal/domain/model"
)

// TournamentDependencies defines the interface for tournament audits.
type TournamentDependencies interface {
	AuditTournament(ctx context.Context, kind model.TournamentKind, id int64) (model.TournamentAudit, error)
}

// TournamentHandler handles tournament audit requests.
type TournamentHandler struct {
	deps TournamentDependencies
}

// NewTournamentHandler creates a new tournament handler.
func NewTournamentHandler(deps TournamentDependencies) *TournamentHandler {
	return &TournamentHandler{deps: deps}
}

type auditRequest struct {
	Kind string `validate:"required,tournament"`
	ID   string `validate:"required,number,max=19"`
}

type auditResponse struct {
	model.TournamentAudit
	Balanced bool `json:"balanced"`
}

// HandleAudit handles GET /tournaments/{kind}/{id}/audit requests.
func (h *TournamentHandler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	req := auditRequest{Kind: chi.URLParam(r, "kind"), ID: chi.URLParam(r, "id")}
	if fields, err := validateRequest(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: err.Error(), Fields: fields})
		return
	}
	id, err := strconv.ParseInt(req.ID, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code: "bad_request", Message: ErrBadRequest.Error(), Fields: map[string]string{"id": "Must be a tournament id"},
		})
		return
	}

	kind, _ := model.ParseTournamentKind(req.Kind)
	audit, err := h.deps.AuditTournament(r.Context(), kind, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, auditResponse{TournamentAudit: audit, Balanced: audit.Balanced()})
}
