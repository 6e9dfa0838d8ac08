package routes

import (
	"github.com/Dosada05/tournament-liveops/handlers"
	"github.com/Dosada05/tournament-liveops/middleware"
	"github.com/Dosada05/tournament-liveops/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	LiveOps   *handlers.LiveOpsHandler
	Board     *handlers.BoardHandler
	WebSocket *handlers.WebSocketHandler
}

func InitRoutes(h Handlers, jwtSecret string) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/operators/signup", h.Auth.Register)
	router.Post("/operators/signin", h.Auth.Login)

	// Live-события для табло и консолей.
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	// Публичные маршруты табло: read-only, без токена.
	router.Route("/board", func(r chi.Router) {
		r.Get("/schedule", h.Board.Schedule)
		r.Get("/conflicts", h.Board.Conflicts)
		r.Get("/suggestions", h.Board.Suggestions)
		r.Get("/overruns", h.Board.Overruns)
	})

	// Командные маршруты оператора.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate([]byte(jwtSecret)))

		r.Get("/operators/me", h.Auth.Me)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleOperator))

			r.Route("/matches/{matchID}", func(r chi.Router) {
				r.Post("/transition", h.LiveOps.Transition)
				r.Post("/undo", h.LiveOps.UndoTransition)
				r.Patch("/state", h.LiveOps.PatchState)
				r.Put("/players", h.LiveOps.UpdatePlayers)
				r.Post("/start", h.LiveOps.StartOnCourt)
				r.Post("/undo-start", h.LiveOps.UndoStart)
				r.Get("/impact", h.LiveOps.Impact)
			})

			r.Post("/schedule/reoptimize", h.LiveOps.Reoptimize)
			r.Get("/schedule/export", h.LiveOps.ExportState)
			r.Post("/schedule/import", h.LiveOps.ImportState)

			r.Post("/board/suggestions/{courtID}/skip", h.Board.SkipSuggestion)
			r.Post("/board/publish", h.Board.Publish)
		})
	})

	return router
}
