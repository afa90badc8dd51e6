package leaderboardhandlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventsports/minha-inscricao/app/middleware"
	leaderboardservice "github.com/eventsports/minha-inscricao/app/modules/leaderboard/application"
	"github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/scoring"
	leaderboardtypes "github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/types"
)

const testSecret = "test-secret"

// FakeService lets each test script the application layer.
type FakeService struct {
	RegisterResultFunc          func(ctx context.Context, input leaderboardservice.RegisterResultInput) (*leaderboardservice.ResultView, error)
	RegisterResultsBatchFunc    func(ctx context.Context, inputs []leaderboardservice.RegisterResultInput) (*leaderboardservice.BatchRegisterView, error)
	UpdateResultFunc            func(ctx context.Context, resultID int64, input leaderboardservice.UpdateResultInput) (*leaderboardservice.ResultView, error)
	DeleteResultFunc            func(ctx context.Context, resultID int64) error
	InitializeSlotsFunc         func(ctx context.Context, categoryID, workoutID int64) (*leaderboardservice.SlotInitializationView, error)
	RecalculateCategoryFunc     func(ctx context.Context, categoryID int64) error
	ChangeWorkoutResultKindFunc func(ctx context.Context, workoutID int64, kind leaderboardtypes.ResultKind) error
	GetWorkoutLeaderboardFunc   func(ctx context.Context, categoryID, workoutID int64) (*leaderboardservice.WorkoutLeaderboardView, error)
	GetWorkoutProgressFunc      func(ctx context.Context, categoryID, workoutID int64) (*leaderboardservice.WorkoutProgressView, error)
	GetCategoryRankingFunc      func(ctx context.Context, categoryID int64) (*leaderboardservice.CategoryRankingView, error)
	GetCategoryStatsFunc        func(ctx context.Context, categoryID int64) (*leaderboardservice.CategoryStatsView, error)
}

func (f *FakeService) RegisterResult(ctx context.Context, input leaderboardservice.RegisterResultInput) (*leaderboardservice.ResultView, error) {
	return f.RegisterResultFunc(ctx, input)
}

func (f *FakeService) RegisterResultsBatch(ctx context.Context, inputs []leaderboardservice.RegisterResultInput) (*leaderboardservice.BatchRegisterView, error) {
	return f.RegisterResultsBatchFunc(ctx, inputs)
}

func (f *FakeService) UpdateResult(ctx context.Context, resultID int64, input leaderboardservice.UpdateResultInput) (*leaderboardservice.ResultView, error) {
	return f.UpdateResultFunc(ctx, resultID, input)
}

func (f *FakeService) DeleteResult(ctx context.Context, resultID int64) error {
	return f.DeleteResultFunc(ctx, resultID)
}

func (f *FakeService) InitializeSlots(ctx context.Context, categoryID, workoutID int64) (*leaderboardservice.SlotInitializationView, error) {
	return f.InitializeSlotsFunc(ctx, categoryID, workoutID)
}

func (f *FakeService) RecalculateCategory(ctx context.Context, categoryID int64) error {
	return f.RecalculateCategoryFunc(ctx, categoryID)
}

func (f *FakeService) ChangeWorkoutResultKind(ctx context.Context, workoutID int64, kind leaderboardtypes.ResultKind) error {
	return f.ChangeWorkoutResultKindFunc(ctx, workoutID, kind)
}

func (f *FakeService) GetWorkoutLeaderboard(ctx context.Context, categoryID, workoutID int64) (*leaderboardservice.WorkoutLeaderboardView, error) {
	return f.GetWorkoutLeaderboardFunc(ctx, categoryID, workoutID)
}

func (f *FakeService) GetWorkoutProgress(ctx context.Context, categoryID, workoutID int64) (*leaderboardservice.WorkoutProgressView, error) {
	return f.GetWorkoutProgressFunc(ctx, categoryID, workoutID)
}

func (f *FakeService) GetCategoryRanking(ctx context.Context, categoryID int64) (*leaderboardservice.CategoryRankingView, error) {
	return f.GetCategoryRankingFunc(ctx, categoryID)
}

func (f *FakeService) GetCategoryStats(ctx context.Context, categoryID int64) (*leaderboardservice.CategoryStatsView, error) {
	return f.GetCategoryStatsFunc(ctx, categoryID)
}

func newTestServer(t *testing.T, svc leaderboardservice.Service) *httptest.Server {
	t.Helper()
	h := NewLeaderboardHandlers(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(h.Routes(testSecret))
	t.Cleanup(srv.Close)
	return srv
}

func authedRequest(t *testing.T, method, url, role string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)

	token, err := middleware.IssueToken(testSecret, 42, role, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestRegisterResult_Created(t *testing.T) {
	position := 1
	svc := &FakeService{
		RegisterResultFunc: func(ctx context.Context, input leaderboardservice.RegisterResultInput) (*leaderboardservice.ResultView, error) {
			return &leaderboardservice.ResultView{
				ResultID:   7,
				CategoryID: input.CategoryID,
				WorkoutID:  input.WorkoutID,
				Kind:       leaderboardtypes.ResultKindReps,
				Value:      "150 reps",
				Position:   &position,
				Finalized:  true,
			}, nil
		},
	}
	srv := newTestServer(t, svc)

	req := authedRequest(t, http.MethodPost, srv.URL+"/results", middleware.RoleOrganizer, map[string]any{
		"category_id": 10,
		"workout_id":  100,
		"athlete_id":  1,
		"result":      map[string]any{"reps": 150},
		"finalized":   true,
	})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var view leaderboardservice.ResultView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, int64(7), view.ResultID)
	assert.Equal(t, "150 reps", view.Value)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{
			name: "duplicate is conflict",
			serviceErr: &leaderboardservice.DuplicateResultError{
				CategoryID:  10,
				WorkoutID:   100,
				Participant: leaderboardtypes.AthleteID(1),
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "invalid format is bad request",
			serviceErr: scoring.ErrInvalidResultFormat,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "mismatch is bad request",
			serviceErr: &leaderboardservice.ParticipantCategoryMismatchError{
				CategoryID:  10,
				Participant: leaderboardtypes.TeamID(5),
				Reason:      "category takes individual athletes",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing category is not found",
			serviceErr: &leaderboardservice.CategoryNotFoundError{CategoryID: 404},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "batch error classified by cause",
			serviceErr: &leaderboardservice.BatchValidationError{
				Index: 3,
				Err: &leaderboardservice.DuplicateResultError{
					CategoryID:  10,
					WorkoutID:   100,
					Participant: leaderboardtypes.AthleteID(1),
				},
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unknown error is internal",
			serviceErr: io.ErrUnexpectedEOF,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &FakeService{
				RegisterResultFunc: func(ctx context.Context, input leaderboardservice.RegisterResultInput) (*leaderboardservice.ResultView, error) {
					return nil, tt.serviceErr
				},
			}
			srv := newTestServer(t, svc)

			req := authedRequest(t, http.MethodPost, srv.URL+"/results", middleware.RoleOrganizer, map[string]any{})
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestAuth(t *testing.T) {
	svc := &FakeService{
		GetCategoryRankingFunc: func(ctx context.Context, categoryID int64) (*leaderboardservice.CategoryRankingView, error) {
			return &leaderboardservice.CategoryRankingView{CategoryID: categoryID}, nil
		},
		RecalculateCategoryFunc: func(ctx context.Context, categoryID int64) error {
			return nil
		},
	}
	srv := newTestServer(t, svc)

	t.Run("no token is unauthorized", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/categories/10/ranking")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("athlete can read", func(t *testing.T) {
		req := authedRequest(t, http.MethodGet, srv.URL+"/categories/10/ranking", middleware.RoleAthlete, nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("athlete cannot mutate", func(t *testing.T) {
		req := authedRequest(t, http.MethodPost, srv.URL+"/categories/10/recalculate", middleware.RoleAthlete, nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("organizer can mutate", func(t *testing.T) {
		req := authedRequest(t, http.MethodPost, srv.URL+"/categories/10/recalculate", middleware.RoleOrganizer, nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

func TestChangeWorkoutResultKind_InvalidKind(t *testing.T) {
	svc := &FakeService{
		ChangeWorkoutResultKindFunc: func(ctx context.Context, workoutID int64, kind leaderboardtypes.ResultKind) error {
			t.Error("service must not be called for an invalid kind")
			return nil
		},
	}
	srv := newTestServer(t, svc)

	req := authedRequest(t, http.MethodPatch, srv.URL+"/workouts/100/result-kind", middleware.RoleOrganizer,
		map[string]string{"kind": "DISTANCE"})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportCategoryRanking_XLSX(t *testing.T) {
	svc := &FakeService{
		GetCategoryRankingFunc: func(ctx context.Context, categoryID int64) (*leaderboardservice.CategoryRankingView, error) {
			return &leaderboardservice.CategoryRankingView{
				CategoryID:   categoryID,
				CategoryName: "RX Individual",
				Entries: []leaderboardservice.RankingEntryView{
					{
						Position:          1,
						Participant:       leaderboardservice.ParticipantView{Kind: leaderboardtypes.ParticipationIndividual, ID: 1, Name: "Ana"},
						Total:             3,
						WorkoutsFinalized: 2,
						HasScore:          true,
					},
				},
			}, nil
		},
	}
	srv := newTestServer(t, svc)

	req := authedRequest(t, http.MethodGet, srv.URL+"/categories/10/ranking/export", middleware.RoleAthlete, nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "ranking-RX-Individual.xlsx")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}
