package handler

import (
	"net/http"
	"strings"

	"github.com/Dan9191/blog-service/internal/apperror"
	"github.com/Dan9191/blog-service/internal/models"
)

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreatePost publishes a post as the logged-in user
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	post, err := h.svc.CreatePost(r.Context(), currentSession(r).UserID, req.Title, req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{
		"message": "Post created successfully",
		"post":    post.View(),
	})
}

// ListPosts returns a page of posts, newest first
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	posts, pagination, err := h.svc.ListPosts(r.Context(), page, perPage)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"posts":      models.PostViews(posts),
		"pagination": pagination,
	})
}

// SearchPosts matches ?q= against post titles and contents
func (h *Handler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	page, perPage := pageParams(r)
	posts, pagination, err := h.svc.SearchPosts(r.Context(), query, page, perPage)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"query":      query,
		"posts":      models.PostViews(posts),
		"pagination": pagination,
	})
}

// GetPost returns a single post
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, r, apperror.NotFound("Post not found"))
		return
	}
	post, err := h.svc.GetPost(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"post": post.View()})
}

// UpdatePost replaces a post's title and content; owner only
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, r, apperror.NotFound("Post not found"))
		return
	}

	post, err := h.svc.UpdatePost(r.Context(), currentSession(r).UserID, id, req.Title, req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"message": "Post updated successfully",
		"post":    post.View(),
	})
}

// DeletePost removes a post; owner only
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, r, apperror.NotFound("Post not found"))
		return
	}
	if err := h.svc.DeletePost(r.Context(), currentSession(r).UserID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Post deleted successfully"})
}
