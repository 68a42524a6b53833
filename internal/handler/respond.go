package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Dan9191/blog-service/internal/apperror"
	"github.com/Dan9191/blog-service/internal/middleware"
	"github.com/Dan9191/blog-service/internal/models"
	"github.com/Dan9191/blog-service/internal/session"
)

type envelope map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err to its status. Internal causes are logged, never sent.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.KindInternal {
		h.log.WithField("request_id", middleware.RequestID(r.Context())).
			WithError(err).
			Errorf("%s %s failed", r.Method, r.URL.Path)
	}
	writeJSON(w, apperror.HTTPStatus(kind), envelope{"error": apperror.Message(err)})
}

// decode reads a JSON body into dst. An empty body leaves dst untouched so
// field validation reports what is missing.
func decode(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperror.Validation("Invalid JSON body")
}

// pathID returns the numeric {id} route variable
func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// pageParams reads page and per_page. Anything unparsable becomes 0 and is
// replaced by the defaults downstream.
func pageParams(r *http.Request) (int, int) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	return page, perPage
}

func currentSession(r *http.Request) *session.Session {
	s, _ := session.FromContext(r.Context())
	return s
}

func userViews(users []models.User) []models.UserView {
	views := make([]models.UserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].View(false))
	}
	return views
}
