package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/openpaddock/motorclub/handlers"
	"github.com/openpaddock/motorclub/middleware"
	"github.com/openpaddock/motorclub/models"
)

// SetupRoutes mounts every API route on the given router.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Auth,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	clubHandler *handlers.ClubHandler,
	carHandler *handlers.GarageHandler,
	motorcycleHandler *handlers.GarageHandler,
	eventHandler *handlers.EventHandler,
	locationHandler *handlers.LocationHandler,
	newsHandler *handlers.NewsHandler,
	resultHandler *handlers.ResultHandler,
	websocketHandler *handlers.WebsocketHandler,
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

	adminOnly := auth.RequireRole(models.RoleAdmin)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/reset-password", authHandler.ResetPassword)
	})

	router.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Get("/{id}", userHandler.GetByID)
			r.Put("/{id}", userHandler.Update)
			r.Get("/{id}/cars", carHandler.ListByUser)
			r.Get("/{id}/motorcycles", motorcycleHandler.ListByUser)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)

				r.Get("/", userHandler.List)
				r.Delete("/{id}", userHandler.Delete)
				r.Post("/{id}/ban", userHandler.Ban)
			})
		})
	})

	router.Route("/clubs", func(r chi.Router) {
		r.Get("/", clubHandler.List)
		r.Get("/{id}", clubHandler.GetByID)
		r.Get("/{id}/members", clubHandler.Members)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/{id}/join", clubHandler.Join)
			r.Post("/{id}/leave", clubHandler.Leave)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)

				r.Post("/", clubHandler.Create)
				r.Put("/{id}", clubHandler.Update)
				r.Delete("/{id}", clubHandler.Delete)
			})
		})
	})

	mountGarage := func(path string, h *handlers.GarageHandler) {
		router.Route(path, func(r chi.Router) {
			r.Get("/{id}", h.GetByID)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)

				r.Post("/", h.Create)
				r.Put("/{id}", h.Update)
				r.Delete("/{id}", h.Delete)
			})
		})
	}
	mountGarage("/cars", carHandler)
	mountGarage("/motorcycles", motorcycleHandler)

	router.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.List)
		r.Get("/closures", eventHandler.ListClosures)
		r.Get("/{id}", eventHandler.GetByID)
		r.Get("/{id}/results", resultHandler.EventResults)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(adminOnly)

			r.Post("/", eventHandler.Create)
			r.Put("/{id}", eventHandler.Update)
			r.Delete("/{id}", eventHandler.Delete)
		})
	})

	router.Route("/locations", func(r chi.Router) {
		r.Get("/", locationHandler.List)
		r.Get("/{id}", locationHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(adminOnly)

			r.Post("/", locationHandler.Create)
			r.Put("/{id}", locationHandler.Update)
			r.Delete("/{id}", locationHandler.Delete)
		})
	})

	router.Route("/news", func(r chi.Router) {
		r.Get("/", newsHandler.List)
		r.Get("/{id}", newsHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(adminOnly)

			r.Post("/", newsHandler.Create)
			r.Put("/{id}", newsHandler.Update)
			r.Delete("/{id}", newsHandler.Delete)
		})
	})

	router.Get("/leaderboard", resultHandler.Leaderboard)

	router.Get("/ws", websocketHandler.Serve)
}
