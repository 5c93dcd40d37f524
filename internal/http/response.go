package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"

	// DefaultCookieMaxAge is the session cookie lifetime in seconds.
	DefaultCookieMaxAge = 3600
)

// cookieSettings shapes the Set-Cookie values emitted for the session.
type cookieSettings struct {
	name     string
	maxAge   int
	hardened bool
}

func (s cookieSettings) cookie(value string, maxAge int) *http.Cookie {
	ck := &http.Cookie{
		Name:   s.name,
		Value:  value,
		MaxAge: maxAge,
	}
	if s.hardened {
		ck.Path = "/"
		ck.HttpOnly = true
		ck.SameSite = http.SameSiteLaxMode
	}
	return ck
}

// responder accumulates headers and writes exactly one terminal outcome.
type responder struct {
	c       *gin.Context
	cookies cookieSettings
	headers http.Header
	logger  logrus.FieldLogger
	written bool
}

func (r *responder) SetSessionCookie(id string) {
	r.headers.Set("Set-Cookie", r.cookies.cookie(id, r.cookies.maxAge).String())
}

// ClearSessionCookie replaces any queued Set-Cookie with an expired one.
func (r *responder) ClearSessionCookie() {
	// a negative MaxAge renders as Max-Age=0
	r.headers.Set("Set-Cookie", r.cookies.cookie("", -1).String())
}

func (r *responder) OK(html string) {
	r.emit(http.StatusOK, contentTypeHTML, html)
}

func (r *responder) Redirect(location string) {
	r.headers.Set("Location", location)
	r.emit(http.StatusFound, "", "")
}

func (r *responder) BadRequest() {
	r.emit(http.StatusBadRequest, contentTypeText, "400 Bad Request")
}

func (r *responder) Unauthorized() {
	r.ClearSessionCookie()
	r.emit(http.StatusUnauthorized, contentTypeText, "401 Unauthorized")
}

func (r *responder) NotFound() {
	r.emit(http.StatusNotFound, contentTypeText, "404 Not Found")
}

func (r *responder) Conflict() {
	r.ClearSessionCookie()
	r.emit(http.StatusConflict, contentTypeText, "409 Conflict")
}

func (r *responder) InternalError() {
	r.emit(http.StatusInternalServerError, contentTypeText, "500 Internal Server Error")
}

func (r *responder) emit(status int, contentType, body string) {
	if r.written {
		r.logger.WithFields(logrus.Fields{
			"path":   r.c.Request.URL.Path,
			"status": status,
		}).Error("response already written, dropping second outcome")
		return
	}
	r.written = true

	header := r.c.Writer.Header()
	for key, values := range r.headers {
		header[key] = values
	}

	if body == "" && contentType == "" {
		r.c.Status(status)
		r.c.Writer.WriteHeaderNow()
		return
	}
	r.c.Data(status, contentType, []byte(body))
}
