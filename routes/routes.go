package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"

	"github.com/rodrigo-greising/game-theory-sub000/handlers"
	"github.com/rodrigo-greising/game-theory-sub000/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	sessionHandler *handlers.SessionHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/sessions", func(r chi.Router) {
		// Публичные маршруты: лобби и вход в сессию.
		r.Get("/", sessionHandler.ListSessionsHandler)
		r.Post("/", sessionHandler.CreateSessionHandler)
		r.Get("/{sessionID}", sessionHandler.GetSessionHandler)
		r.Post("/{sessionID}/join", sessionHandler.JoinSessionHandler)

		// Защищенные маршруты: адресация участника через токен сессии.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate([]byte(jwtSecret)))

			r.Post("/{sessionID}/start", matchHandler.StartSessionHandler)
			r.Post("/{sessionID}/actions", matchHandler.SubmitActionHandler)
			r.Post("/{sessionID}/reset", matchHandler.ResetSessionHandler)
			r.Post("/{sessionID}/leave", sessionHandler.LeaveSessionHandler)
			r.Post("/{sessionID}/reshuffle", matchHandler.ReshuffleHandler)
			r.Get("/{sessionID}/standings", matchHandler.StandingsHandler)
			r.Get("/{sessionID}/history", matchHandler.HistoryHandler)
		})
	})

	router.Get("/ws/sessions/{sessionID}", webSocketHandler.ServeWs)
}
