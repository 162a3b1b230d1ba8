package handlers

import (
	"net/http"
	"time"

	"FileVault/internal/auth"
	"FileVault/internal/config"
	"FileVault/internal/middleware"
	"FileVault/internal/service"
	"FileVault/internal/storage"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type Handler struct {
	Router  chi.Router
	limiter *middleware.Limiter
}

// Close останавливает фоновые задачи роутера (очистку rate limiter).
func (h *Handler) Close() {
	if h.limiter != nil {
		h.limiter.Stop()
	}
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	contentService *service.ContentService,
	store storage.BlobStore,
	verifier auth.TokenVerifier,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()
	h := &Handler{Router: r}

	r.Use(chimw.RequestID)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithRecover)
	r.Use(middleware.WithGzip)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{config.CORSOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Content-Encoding"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if config.RateLimit > 0 {
		h.limiter = middleware.NewLimiter(config.RateLimit, time.Minute)
		r.Use(middleware.WithRateLimit(h.limiter))
	}

	var confirm middleware.UserConfirmer
	if config.AuthConfirmUser {
		confirm = userService.UserExists
	}
	requireAuth := middleware.RequireAuth(verifier, confirm, func(w http.ResponseWriter, _ *http.Request, err error) {
		writeError(w, logger, err, "")
	})

	// Handlers
	userHandler := NewUserHandler(userService, contentService, logger, config)
	contentHandler := NewContentHandler(contentService, logger, config)

	r.Route("/api", func(r chi.Router) {
		// User routes
		r.Post("/user/sign-up", userHandler.SignUp)
		r.Post("/login", userHandler.Login)
		r.Get("/logout", userHandler.Logout)
		r.Get("/test", userHandler.Status)

		// подписанные ссылки локального хранилища проверяются по токену в query
		if ls, ok := store.(linkStore); ok {
			storageHandler := NewStorageHandler(ls, logger)
			r.Get("/storage/*", storageHandler.Serve)
		}

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/", userHandler.Index)
			r.Get("/current-user", userHandler.CurrentUser)
			r.Get("/download/{fileId}", contentHandler.Download)

			// Content routes
			r.Route("/content", func(r chi.Router) {
				r.Post("/add-folder", contentHandler.AddFolder)
				r.Get("/{folderId}/edit-folder", contentHandler.GetFolder)
				r.Post("/{folderId}/edit-folder", contentHandler.EditFolder)
				r.Post("/{folderId}/delete-folder", contentHandler.DeleteFolder)
				r.Post("/folder/{folderId}/upload-file", contentHandler.UploadFile)
				r.Get("/folder/{folderId}/files", contentHandler.ListFiles)
				r.Get("/files/{fileId}", contentHandler.GetFile)
				r.Post("/files/{folderId}/{fileId}/delete-file", contentHandler.DeleteFile)
				r.Get("/files/{folderId}/{fileId}/signed-url", contentHandler.SignedURL)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Route not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	return h
}
