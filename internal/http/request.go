package http

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/encoding/unicode"

	"vulnsite/internal/session"
)

// DefaultMaxBodyBytes is the largest Content-Length that is still parsed.
// Anything above it is treated as an empty form, not rejected.
const DefaultMaxBodyBytes = 8192

// requestContext derives session identity and form fields from one request.
type requestContext struct {
	c          *gin.Context
	sessions   session.Store
	cookieName string
	maxBody    int64
}

// SessionID returns the session cookie value from the raw Cookie header.
func (r *requestContext) SessionID() (string, bool) {
	return sessionIDFromHeader(r.c.GetHeader("Cookie"), r.cookieName)
}

// CurrentSession resolves the session cookie against the store. A session
// without a username counts as absent.
func (r *requestContext) CurrentSession() (string, session.Data, bool, error) {
	id, ok := r.SessionID()
	if !ok {
		return "", nil, false, nil
	}

	data, err := r.sessions.Get(r.c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return id, nil, false, nil
		}
		return id, nil, false, fmt.Errorf("load session: %w", err)
	}
	if _, ok := data.Username(); !ok {
		return id, nil, false, nil
	}
	return id, data, true, nil
}

// ParseBody reads exactly Content-Length bytes and decodes them as a
// urlencoded form. A missing, malformed, negative or oversized length
// yields an empty form.
func (r *requestContext) ParseBody() url.Values {
	raw := strings.TrimSpace(r.c.GetHeader("Content-Length"))
	if raw == "" {
		return url.Values{}
	}
	length, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || length < 0 || length > r.maxBody {
		return url.Values{}
	}
	if length == 0 || r.c.Request.Body == nil {
		return url.Values{}
	}

	buf := make([]byte, length)
	n, err := io.ReadFull(r.c.Request.Body, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return url.Values{}
	}
	return parseForm(decodeUTF8(buf[:n]))
}

// sessionIDFromHeader splits the header on ';', trims each pair and splits
// it on the first '='. Pairs without '=' are skipped; the last match wins.
func sessionIDFromHeader(header, key string) (string, bool) {
	if header == "" {
		return "", false
	}

	var (
		value string
		found bool
	)
	for _, item := range strings.Split(header, ";") {
		name, v, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok {
			continue
		}
		if name == key {
			value, found = v, true
		}
	}
	return value, found
}

// parseForm follows urlencoded semantics with two leniencies: pairs that
// have no '=' or an empty value are dropped, and malformed percent escapes
// are kept verbatim instead of failing the whole body.
func parseForm(body string) url.Values {
	form := url.Values{}
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok || value == "" {
			continue
		}
		form.Add(unescapeFormValue(name), unescapeFormValue(value))
	}
	return form
}

func unescapeFormValue(s string) string {
	s = strings.ReplaceAll(s, "+", " ")
	if !strings.Contains(s, "%") {
		return s
	}

	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			out = append(out, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
			continue
		}
		out = append(out, s[i])
	}
	return decodeUTF8(out)
}

func decodeUTF8(b []byte) string {
	decoded, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(decoded)
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// firstValue returns the first value of a field, reporting whether it was sent.
func firstValue(form url.Values, key string) (string, bool) {
	values, ok := form[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}
