package handler

import (
	"net/http"

	"github.com/Dan9191/blog-service/internal/apperror"
	"github.com/Dan9191/blog-service/internal/models"
	"github.com/Dan9191/blog-service/internal/service"
)

type profileRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// GetProfile returns the logged-in user with email and post count
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, count, err := h.svc.GetProfile(r.Context(), currentSession(r).UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"user": user.View(true).WithPostCount(count)})
}

// UpdateProfile changes the email and/or password of the logged-in user
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), currentSession(r).UserID, service.ProfileUpdate{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"message": "Profile updated successfully",
		"user":    user.View(true),
	})
}

// DeleteProfile removes the logged-in user and their posts, then logs out
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAccount(r.Context(), currentSession(r).UserID); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.sessions.ClearCookie(w)
	writeJSON(w, http.StatusOK, envelope{"message": "Account deleted successfully"})
}

// ListUsers returns a page of users without emails
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	users, pagination, err := h.svc.ListUsers(r.Context(), page, perPage)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"users":      userViews(users),
		"pagination": pagination,
	})
}

// GetUser returns one user's public view with their post count
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, r, apperror.NotFound("User not found"))
		return
	}
	user, count, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"user": user.View(false).WithPostCount(count)})
}

// ListUserPosts returns a page of one user's posts
func (h *Handler) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, r, apperror.NotFound("User not found"))
		return
	}
	page, perPage := pageParams(r)
	user, posts, pagination, err := h.svc.ListUserPosts(r.Context(), id, page, perPage)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"user":       user.View(false),
		"posts":      models.PostViews(posts),
		"pagination": pagination,
	})
}
