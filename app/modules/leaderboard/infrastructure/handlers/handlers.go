package leaderboardhandlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	leaderboardservice "github.com/eventsports/minha-inscricao/app/modules/leaderboard/application"
	"github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/scoring"
	leaderboardtypes "github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/types"
)

// LeaderboardHandlers serves the leaderboard HTTP surface.
type LeaderboardHandlers struct {
	service leaderboardservice.Service
	logger  *slog.Logger
}

// NewLeaderboardHandlers creates the handler set.
func NewLeaderboardHandlers(service leaderboardservice.Service, logger *slog.Logger) *LeaderboardHandlers {
	return &LeaderboardHandlers{service: service, logger: logger}
}

func (h *LeaderboardHandlers) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// respondError maps service errors onto HTTP statuses.
func (h *LeaderboardHandlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		dupErr      *leaderboardservice.DuplicateResultError
		kindErr     *leaderboardservice.WorkoutKindConflictError
		mismatchErr *leaderboardservice.ParticipantCategoryMismatchError
		batchErr    *leaderboardservice.BatchValidationError
		resultNF    *leaderboardservice.ResultNotFoundError
		categoryNF  *leaderboardservice.CategoryNotFoundError
		workoutNF   *leaderboardservice.WorkoutNotFoundError
	)

	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.As(err, &dupErr), errors.As(err, &kindErr):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, scoring.ErrInvalidResultFormat), errors.As(err, &mismatchErr):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.As(err, &batchErr):
		// A batch error wraps one of the above; classify by the cause.
		h.respondError(w, r, batchErr.Err)
		return
	case errors.As(err, &resultNF), errors.As(err, &categoryNF), errors.As(err, &workoutNF):
		status = http.StatusNotFound
		message = err.Error()
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}

	h.respondJSON(w, status, map[string]string{"error": message})
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// RegisterResult handles POST /results.
func (h *LeaderboardHandlers) RegisterResult(w http.ResponseWriter, r *http.Request) {
	var input leaderboardservice.RegisterResultInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	view, err := h.service.RegisterResult(r.Context(), input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, view)
}

// RegisterResultsBatch handles POST /results/batch.
func (h *LeaderboardHandlers) RegisterResultsBatch(w http.ResponseWriter, r *http.Request) {
	var inputs []leaderboardservice.RegisterResultInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	view, err := h.service.RegisterResultsBatch(r.Context(), inputs)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, view)
}

// UpdateResult handles PATCH /results/{resultID}.
func (h *LeaderboardHandlers) UpdateResult(w http.ResponseWriter, r *http.Request) {
	resultID, err := pathID(r, "resultID")
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid result id"})
		return
	}

	var input leaderboardservice.UpdateResultInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	view, err := h.service.UpdateResult(r.Context(), resultID, input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// DeleteResult handles DELETE /results/{resultID}.
func (h *LeaderboardHandlers) DeleteResult(w http.ResponseWriter, r *http.Request) {
	resultID, err := pathID(r, "resultID")
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid result id"})
		return
	}

	if err := h.service.DeleteResult(r.Context(), resultID); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// InitializeSlots handles POST /categories/{categoryID}/workouts/{workoutID}/slots.
func (h *LeaderboardHandlers) InitializeSlots(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "categoryID")
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category id"})
		return
	}
	workoutID, err := pathID(r, "workoutID")
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout id"})
		return
	}

	view, err := h.service.InitializeSlots(r.Context(), categoryID, workoutID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, view)
}

// RecalculateCategory handles POST /categories/{categoryID}/recalculate.
func (h *LeaderboardHandlers) RecalculateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "categoryID")
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category id"})
		return
	}

	if err := h.service.RecalculateCategory(r.Context(), categoryID); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangeWorkoutResultKind handles PATCH /workouts/{workoutID}/result-kind.
func (h *LeaderboardHandlers) ChangeWorkoutResultKind(w http.ResponseWriter, r *http.Request) {
	workoutID, err := pathID(r, "workoutID")
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout id"})
		return
	}

	var body struct {
		Kind leaderboardtypes.ResultKind `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body.Kind.Valid() {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid result kind"})
		return
	}

	if err := h.service.ChangeWorkoutResultKind(r.Context(), workoutID, body.Kind); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetWorkoutLeaderboard handles GET /categories/{categoryID}/workouts/{workoutID}.
func (h *LeaderboardHandlers) GetWorkoutLeaderboard(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "categoryID")
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category id"})
		return
	}
	workoutID, err := pathID(r, "workoutID")
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout id"})
		return
	}

	view, err := h.service.GetWorkoutLeaderboard(r.Context(), categoryID, workoutID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// GetWorkoutProgress handles GET /categories/{categoryID}/workouts/{workoutID}/progress.
func (h *LeaderboardHandlers) GetWorkoutProgress(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "categoryID")
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category id"})
		return
	}
	workoutID, err := pathID(r, "workoutID")
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout id"})
		return
	}

	view, err := h.service.GetWorkoutProgress(r.Context(), categoryID, workoutID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// GetCategoryRanking handles GET /categories/{categoryID}/ranking.
func (h *LeaderboardHandlers) GetCategoryRanking(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "categoryID")
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category id"})
		return
	}

	view, err := h.service.GetCategoryRanking(r.Context(), categoryID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// GetCategoryStats handles GET /categories/{categoryID}/stats.
func (h *LeaderboardHandlers) GetCategoryStats(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "categoryID")
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category id"})
		return
	}

	view, err := h.service.GetCategoryStats(r.Context(), categoryID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}
