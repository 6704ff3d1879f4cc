package router

import (
	"net/http"

	"brandmark/internal/auth"
	"brandmark/internal/http-server/handler/batch"
	"brandmark/internal/http-server/handler/session"
	"brandmark/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	SessionHandler *session.SessionHandler
	BatchHandler   *batch.BatchHandler
	Tokens         *auth.TokenManager
}

func SetupRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.SessionHandler.Login)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Route("/batches", func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(h.Tokens))

			r.Post("/", h.BatchHandler.UploadBatch)
			r.Get("/{id}", h.BatchHandler.GetBatch)
			r.Get("/{id}/outputs", h.BatchHandler.ListOutputs)
			r.Get("/{id}/outputs/{outputID}", h.BatchHandler.DownloadOutput)
			r.Get("/{id}/archive", h.BatchHandler.DownloadArchive)
			r.Delete("/{id}", h.BatchHandler.DeleteBatch)
		})
	})

	return r
}
