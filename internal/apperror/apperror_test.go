package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dan9191/blog-service/internal/apperror"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		apperror.Validation("bad"):        http.StatusBadRequest,
		apperror.Authentication("who"):    http.StatusUnauthorized,
		apperror.Authorization("no"):      http.StatusForbidden,
		apperror.Conflict("taken"):        http.StatusConflict,
		apperror.NotFound("gone"):         http.StatusNotFound,
		apperror.Internal(errors.New("x")): http.StatusInternalServerError,
		errors.New("plain"):               http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, apperror.HTTPStatus(apperror.KindOf(err)), err.Error())
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("update profile: %w", apperror.Conflict("Email already exists"))
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, "Email already exists", apperror.Message(err))
}

func TestInternalMessageHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := apperror.Internal(cause)

	assert.Equal(t, "Internal server error", apperror.Message(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal server error", apperror.Message(cause))
}
