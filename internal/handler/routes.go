package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/blog-service/internal/middleware"
	"github.com/Dan9191/blog-service/internal/session"
)

// NewRouter mounts every route at the root and again under /api
func NewRouter(h *Handler, sessions *session.Manager, log *logrus.Logger) *mux.Router {
	r := mux.NewRouter()
	logRequests := middleware.RequestLogger(log)
	r.Use(logRequests, middleware.Recoverer(log))

	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/api", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/feed.xml", h.Feed).Methods(http.MethodGet)

	auth := middleware.AuthMiddleware(sessions)
	h.mount(r.PathPrefix("/api").Subrouter(), auth)
	h.mount(r, auth)

	// Router middleware only wraps matched routes
	r.NotFoundHandler = logRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{"error": "Endpoint not found"})
	}))
	r.MethodNotAllowedHandler = logRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, envelope{"error": "Method not allowed"})
	}))
	return r
}

func (h *Handler) mount(r *mux.Router, auth mux.MiddlewareFunc) {
	protected := func(fn http.HandlerFunc) http.Handler {
		return auth(fn)
	}

	// Public routes
	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}", h.GetUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}/posts", h.ListUserPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts", h.ListPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts/search", h.SearchPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id:[0-9]+}", h.GetPost).Methods(http.MethodGet)

	// Protected routes
	r.Handle("/profile", protected(h.GetProfile)).Methods(http.MethodGet)
	r.Handle("/profile", protected(h.UpdateProfile)).Methods(http.MethodPut)
	r.Handle("/profile", protected(h.DeleteProfile)).Methods(http.MethodDelete)
	r.Handle("/posts", protected(h.CreatePost)).Methods(http.MethodPost)
	r.Handle("/posts/{id:[0-9]+}", protected(h.UpdatePost)).Methods(http.MethodPut)
	r.Handle("/posts/{id:[0-9]+}", protected(h.DeletePost)).Methods(http.MethodDelete)
}
