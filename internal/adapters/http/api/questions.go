package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/quizrewards/internal/domain/selection"
)

// defaultDistributionUsers matches the sample size used by the qdist tool.
const defaultDistributionUsers = 150

// QuestionsDependencies defines the interface for question selection.
type QuestionsDependencies interface {
	Today() string
	DailyQuestions(ctx context.Context, userID, date string) ([]string, error)
	QuestionDistribution(ctx context.Context, date string, userLimit int) (selection.Histogram, error)
}

// QuestionsHandler handles daily question requests.
type QuestionsHandler struct {
	deps QuestionsDependencies
}

// NewQuestionsHandler creates a new questions handler.
func NewQuestionsHandler(deps QuestionsDependencies) *QuestionsHandler {
	return &QuestionsHandler{deps: deps}
}

type dailyRequest struct {
	UserID string `validate:"required,max=64"`
	Date   string `validate:"omitempty,datetime=2006-01-02"`
}

type dailyResponse struct {
	UserID    string   `json:"user_id"`
	Date      string   `json:"date"`
	Questions []string `json:"questions"`
}

// HandleDaily handles GET /daily/{userID}?date=YYYY-MM-DD requests.
func (h *QuestionsHandler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	req := dailyRequest{UserID: chi.URLParam(r, "userID"), Date: r.URL.Query().Get("date")}
	if fields, err := validateRequest(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: err.Error(), Fields: fields})
		return
	}
	if req.Date == "" {
		req.Date = h.deps.Today()
	}

	qs, err := h.deps.DailyQuestions(r.Context(), req.UserID, req.Date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dailyResponse{UserID: req.UserID, Date: req.Date, Questions: qs})
}

type distributionRequest struct {
	Date  string `validate:"omitempty,datetime=2006-01-02"`
	Users int    `validate:"gte=1,lte=100000"`
}

type bucketResponse struct {
	Question string `json:"question"`
	Count    int    `json:"count"`
}

type distributionResponse struct {
	Date    string           `json:"date"`
	Users   int              `json:"users"`
	Total   int              `json:"total"`
	Buckets []bucketResponse `json:"buckets"`
}

// HandleDistribution handles GET /distribution?date=&users= requests.
func (h *QuestionsHandler) HandleDistribution(w http.ResponseWriter, r *http.Request) {
	req := distributionRequest{Date: r.URL.Query().Get("date"), Users: defaultDistributionUsers}
	if s := r.URL.Query().Get("users"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		req.Users = n
	}
	if fields, err := validateRequest(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: err.Error(), Fields: fields})
		return
	}
	if req.Date == "" {
		req.Date = h.deps.Today()
	}

	hist, err := h.deps.QuestionDistribution(r.Context(), req.Date, req.Users)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := distributionResponse{Date: hist.Date, Users: hist.Users, Total: hist.Total()}
	resp.Buckets = make([]bucketResponse, 0, len(hist.Counts))
	for _, b := range hist.Sorted() {
		resp.Buckets = append(resp.Buckets, bucketResponse{Question: b.Item, Count: b.Count})
	}
	writeJSON(w, http.StatusOK, resp)
}
