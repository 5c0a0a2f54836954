package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/auth"
	"github.com/BuzzLyutic/task-tracker/pkg/respond"
)

func NewRouter(tasks *TaskHandler, commands *CommandHandler, jwt *auth.JWTManager, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(jwt, logger))

		r.Get("/tasks", tasks.List)
		r.Post("/tasks", tasks.Create)
		r.Post("/tasks/{id}/share", tasks.Share)
		r.Post("/tasks/{id}/complete", tasks.Complete)
		r.Delete("/tasks/{id}", tasks.Delete)

		r.Post("/commands", commands.Handle)
	})

	return r
}
