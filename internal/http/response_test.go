package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestResponder(hardened bool) (*responder, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return &responder{
		c:       c,
		cookies: cookieSettings{name: "sid", maxAge: DefaultCookieMaxAge, hardened: hardened},
		headers: make(http.Header),
		logger:  logger,
	}, rec
}

func TestResponder_Cookies(t *testing.T) {
	t.Parallel()

	t.Run("classic set", func(t *testing.T) {
		res, rec := newTestResponder(false)
		res.SetSessionCookie("2")
		res.Redirect("/profile")
		assert.Equal(t, []string{"sid=2; Max-Age=3600"}, rec.Header().Values("Set-Cookie"))
	})

	t.Run("hardened set", func(t *testing.T) {
		res, rec := newTestResponder(true)
		res.SetSessionCookie("2")
		res.Redirect("/profile")
		assert.Equal(t, "sid=2; Path=/; Max-Age=3600; HttpOnly; SameSite=Lax", rec.Header().Get("Set-Cookie"))
	})

	t.Run("clear overwrites queued cookie", func(t *testing.T) {
		res, rec := newTestResponder(false)
		res.SetSessionCookie("2")
		res.ClearSessionCookie()
		res.Redirect("/login")
		assert.Equal(t, []string{"sid=; Max-Age=0"}, rec.Header().Values("Set-Cookie"))
	})

	t.Run("hardened clear", func(t *testing.T) {
		res, rec := newTestResponder(true)
		res.ClearSessionCookie()
		res.Redirect("/login")
		assert.Equal(t, "sid=; Path=/; Max-Age=0; HttpOnly; SameSite=Lax", rec.Header().Get("Set-Cookie"))
	})
}

func TestResponder_Outcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		emit         func(*responder)
		status       int
		contentType  string
		body         string
		clearsCookie bool
	}{
		{name: "ok", emit: func(r *responder) { r.OK("<p>hi</p>") }, status: http.StatusOK, contentType: "text/html; charset=utf-8", body: "<p>hi</p>"},
		{name: "bad request", emit: (*responder).BadRequest, status: http.StatusBadRequest, contentType: "text/plain; charset=utf-8", body: "400 Bad Request"},
		{name: "unauthorized", emit: (*responder).Unauthorized, status: http.StatusUnauthorized, contentType: "text/plain; charset=utf-8", body: "401 Unauthorized", clearsCookie: true},
		{name: "not found", emit: (*responder).NotFound, status: http.StatusNotFound, contentType: "text/plain; charset=utf-8", body: "404 Not Found"},
		{name: "conflict", emit: (*responder).Conflict, status: http.StatusConflict, contentType: "text/plain; charset=utf-8", body: "409 Conflict", clearsCookie: true},
		{name: "internal error", emit: (*responder).InternalError, status: http.StatusInternalServerError, contentType: "text/plain; charset=utf-8", body: "500 Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, rec := newTestResponder(false)
			tt.emit(res)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.body, rec.Body.String())
			if tt.clearsCookie {
				assert.Equal(t, "sid=; Max-Age=0", rec.Header().Get("Set-Cookie"))
			} else {
				assert.Empty(t, rec.Header().Get("Set-Cookie"))
			}
		})
	}
}

func TestResponder_Redirect(t *testing.T) {
	t.Parallel()
	res, rec := newTestResponder(false)

	res.Redirect("/login")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Empty(t, rec.Body.String())
}

func TestResponder_SingleEmission(t *testing.T) {
	t.Parallel()
	res, rec := newTestResponder(false)

	res.OK("first")
	res.NotFound()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "first", rec.Body.String())
}
