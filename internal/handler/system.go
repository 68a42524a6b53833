package handler

import (
	"net/http"
	"time"

	"github.com/Dan9191/blog-service/internal/feed"
)

// Index describes the service and its endpoints
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{
		"message":  "Blog API Server",
		"database": "PostgreSQL",
		"version":  Version,
		"endpoints": map[string]string{
			"POST /api/register":        "Register a new user",
			"POST /api/login":           "Login user",
			"POST /api/logout":          "Logout user",
			"GET /api/profile":          "Get user profile (requires login)",
			"PUT /api/profile":          "Update user profile (requires login)",
			"DELETE /api/profile":       "Delete account and all posts (requires login)",
			"GET /api/users":            "Get all users (paginated)",
			"GET /api/users/<id>":       "Get specific user",
			"GET /api/users/<id>/posts": "Get posts by user (paginated)",
			"POST /api/posts":           "Create a new post (requires login)",
			"GET /api/posts":            "Get all posts (paginated)",
			"GET /api/posts/search":     "Search posts by title or content (?q=)",
			"GET /api/posts/<id>":       "Get specific post",
			"PUT /api/posts/<id>":       "Update post (requires login)",
			"DELETE /api/posts/<id>":    "Delete post (requires login)",
			"GET /api/health":           "Health check",
			"GET /feed.xml":             "RSS feed of recent posts",
		},
	})
}

// Health reports database connectivity and row counts
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Format(time.RFC3339)
	stats, err := h.svc.Health(r.Context())
	if err != nil {
		h.log.WithError(err).Warn("Health check failed")
		writeJSON(w, http.StatusServiceUnavailable, envelope{
			"status":    "unhealthy",
			"timestamp": now,
			"database":  "error: " + err.Error(),
			"version":   Version,
		})
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"status":    "healthy",
		"timestamp": now,
		"database":  "connected",
		"version":   Version,
		"stats":     stats,
	})
}

// Feed serves the newest published posts as RSS
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.LatestPosts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	out, err := feed.Build(feed.Channel{
		Title:       "Blog",
		Link:        scheme + "://" + r.Host,
		Description: "Latest posts",
	}, posts, time.Now())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}
