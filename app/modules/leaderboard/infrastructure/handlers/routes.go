package leaderboardhandlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/eventsports/minha-inscricao/app/middleware"
)

// Routes mounts the leaderboard API. Reads are open to any authenticated
// user; mutations require the organizer role.
func (h *LeaderboardHandlers) Routes(jwtSecret string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(jwtSecret))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOrganizer)

		r.Post("/results", h.RegisterResult)
		r.Post("/results/batch", h.RegisterResultsBatch)
		r.Patch("/results/{resultID}", h.UpdateResult)
		r.Delete("/results/{resultID}", h.DeleteResult)
		r.Post("/categories/{categoryID}/workouts/{workoutID}/slots", h.InitializeSlots)
		r.Post("/categories/{categoryID}/recalculate", h.RecalculateCategory)
		r.Patch("/workouts/{workoutID}/result-kind", h.ChangeWorkoutResultKind)
	})

	r.Get("/categories/{categoryID}/workouts/{workoutID}", h.GetWorkoutLeaderboard)
	r.Get("/categories/{categoryID}/workouts/{workoutID}/progress", h.GetWorkoutProgress)
	r.Get("/categories/{categoryID}/ranking", h.GetCategoryRanking)
	r.Get("/categories/{categoryID}/ranking/export", h.ExportCategoryRanking)
	r.Get("/categories/{categoryID}/stats", h.GetCategoryStats)

	return r
}
