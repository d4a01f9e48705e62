package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/tournament-engine/docs" // регистрирует OpenAPI-документ для /swagger
	"github.com/Dosada05/tournament-engine/handlers"
	"github.com/Dosada05/tournament-engine/middleware"
)

// Options настраивает общие middleware роутера.
type Options struct {
	AllowedOrigins []string
	// JWTSecret включает проверку токена на административных маршрутах; пустой = выключено.
	JWTSecret string
}

func SetupRoutes(
	router *chi.Mux,
	opts Options,
	tournamentHandler *handlers.TournamentHandler,
	participantHandler *handlers.ParticipantHandler,
	matchHandler *handlers.MatchHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var admin []func(http.Handler) http.Handler
	if opts.JWTSecret != "" {
		admin = append(admin,
			middleware.Authenticate([]byte(opts.JWTSecret)),
			middleware.RequireRole(middleware.RoleOrganizer, middleware.RoleAdmin),
		)
	}

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// WebSocket живет дольше любого таймаута запроса, поэтому он вне группы с Timeout.
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Get("/leaderboard", leaderboardHandler.TopHandler)

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.ListHandler)
			r.With(admin...).Post("/", tournamentHandler.CreateHandler)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", tournamentHandler.GetByIDHandler)
				r.Get("/standings", tournamentHandler.StandingsHandler)
				r.Get("/participants", participantHandler.List)
				r.Get("/matches", matchHandler.ListHandler)
				r.Get("/matches/{matchID}", matchHandler.GetHandler)

				// Административные маршруты
				r.Group(func(r chi.Router) {
					r.Use(admin...)

					r.Delete("/", tournamentHandler.DeleteHandler)
					r.Post("/open", tournamentHandler.OpenRegistrationHandler)
					r.Post("/close", tournamentHandler.CloseRegistrationHandler)
					r.Post("/cancel", tournamentHandler.CancelHandler)
					r.Post("/finalize", tournamentHandler.FinalizeHandler)
					r.Post("/seeding", tournamentHandler.ApplySeedingHandler)
					r.Post("/schedule", tournamentHandler.GenerateScheduleHandler)
					r.Post("/schedule/regenerate", tournamentHandler.RegenerateScheduleHandler)
					r.Post("/knockout", tournamentHandler.GenerateKnockoutHandler)

					r.Post("/participants", participantHandler.Register)
					r.Delete("/participants/{participantID}", participantHandler.Withdraw)

					r.Post("/matches/{matchID}/start", matchHandler.StartHandler)
					r.Post("/matches/{matchID}/result", matchHandler.SubmitResultHandler)
					r.Post("/ladder/results", matchHandler.ReportLadderResultHandler)
				})
			})
		})
	})
}
