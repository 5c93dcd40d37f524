package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"vulnsite/internal/service"
	"vulnsite/internal/session"
)

// Options tune the handler. Zero values fall back to the defaults.
type Options struct {
	Policy       Policy
	CookieName   string
	CookieMaxAge int
	MaxBodyBytes int64
	Logger       logrus.FieldLogger
}

// Handler wires HTTP routes to the user service and the session store.
type Handler struct {
	users    service.UserService
	sessions session.Store
	policy   Policy
	cookies  cookieSettings
	maxBody  int64
	logger   logrus.FieldLogger
}

func NewHandler(users service.UserService, sessions session.Store, opts Options) *Handler {
	if opts.Policy.Name == "" {
		opts.Policy = PolicyClassic
	}
	if opts.CookieName == "" {
		opts.CookieName = "sid"
	}
	if opts.CookieMaxAge <= 0 {
		opts.CookieMaxAge = DefaultCookieMaxAge
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}

	return &Handler{
		users:    users,
		sessions: sessions,
		policy:   opts.Policy,
		cookies: cookieSettings{
			name:     opts.CookieName,
			maxAge:   opts.CookieMaxAge,
			hardened: opts.Policy.HardenedCookie,
		},
		maxBody: opts.MaxBodyBytes,
		logger:  opts.Logger,
	}
}

// RegisterRoutes installs middleware and routes. Paths match exactly: no
// trailing-slash redirects and no path cleaning.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false
	router.HandleMethodNotAllowed = false

	router.Use(requestLogger(h.logger), recovery(h.logger))

	router.GET("/", h.index)
	router.GET("/login", h.loginForm)
	router.POST("/login", h.login)
	router.GET("/register", h.registerForm)
	router.POST("/register", h.register)
	router.GET("/profile", h.profile)
	router.POST("/logout", h.logout)
	if h.policy.AllowUpdate {
		router.GET("/update", h.updateForm)
		router.POST("/update", h.update)
	}

	router.NoRoute(h.notFound)
}

// NewRouter returns a gin engine serving the handler's routes.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	h.RegisterRoutes(router)
	return router
}

func (h *Handler) exchange(c *gin.Context) (*requestContext, *responder) {
	req := &requestContext{
		c:          c,
		sessions:   h.sessions,
		cookieName: h.cookies.name,
		maxBody:    h.maxBody,
	}
	res := &responder{
		c:       c,
		cookies: h.cookies,
		headers: make(http.Header),
		logger:  requestLoggerFrom(c, h.logger),
	}
	return req, res
}

func (h *Handler) index(c *gin.Context) {
	_, res := h.exchange(c)
	res.Redirect("/login")
}

func (h *Handler) loginForm(c *gin.Context) {
	_, res := h.exchange(c)
	h.render(c, res, pageLogin, formView{})
}

func (h *Handler) registerForm(c *gin.Context) {
	_, res := h.exchange(c)
	h.render(c, res, pageRegister, formView{})
}

func (h *Handler) login(c *gin.Context) {
	req, res := h.exchange(c)

	form := req.ParseBody()
	username, okUser := firstValue(form, "username")
	password, okPass := firstValue(form, "password")
	if !okUser || !okPass {
		res.BadRequest()
		return
	}

	ctx := c.Request.Context()
	if err := h.users.Authenticate(ctx, username, password); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.render(c, res, pageLogin, formView{Error: loginFailedMessage(username)})
			return
		}
		h.fail(c, res, err)
		return
	}

	id, err := h.sessions.Create(ctx, session.Data{session.KeyUsername: username})
	if err != nil {
		h.fail(c, res, err)
		return
	}

	res.SetSessionCookie(id)
	res.Redirect("/profile")
}

func (h *Handler) register(c *gin.Context) {
	req, res := h.exchange(c)

	form := req.ParseBody()
	username, okUser := firstValue(form, "username")
	password, okPass := firstValue(form, "password")
	profile, okProfile := firstValue(form, "profile")
	if !okUser || !okPass || !okProfile {
		res.BadRequest()
		return
	}

	if err := h.users.Register(c.Request.Context(), username, password, profile); err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			h.render(c, res, pageRegister, formView{Error: duplicateUsernameMessage(username)})
			return
		}
		h.fail(c, res, err)
		return
	}

	res.Redirect("/login")
}

func (h *Handler) profile(c *gin.Context) {
	req, res := h.exchange(c)

	username, ok := h.authenticate(c, req, res)
	if !ok {
		return
	}

	user, err := h.users.Profile(c.Request.Context(), username)
	if err != nil {
		h.userLookupFailed(c, res, err)
		return
	}

	h.render(c, res, pageProfile, profileView{
		Username:    username,
		Profile:     user.Profile,
		AllowUpdate: h.policy.AllowUpdate,
	})
}

func (h *Handler) updateForm(c *gin.Context) {
	req, res := h.exchange(c)

	username, ok := h.authenticate(c, req, res)
	if !ok {
		return
	}

	user, err := h.users.Profile(c.Request.Context(), username)
	if err != nil {
		h.userLookupFailed(c, res, err)
		return
	}

	h.render(c, res, pageUpdate, updateView{
		Username: username,
		Password: user.Password,
		Profile:  user.Profile,
	})
}

// update checks the session, then that the user still exists, and only
// then looks at the submitted fields.
func (h *Handler) update(c *gin.Context) {
	req, res := h.exchange(c)

	username, ok := h.authenticate(c, req, res)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.users.EnsureExists(ctx, username); err != nil {
		h.userLookupFailed(c, res, err)
		return
	}

	form := req.ParseBody()
	password, okPass := firstValue(form, "password")
	profile, okProfile := firstValue(form, "profile")
	if !okPass || !okProfile {
		res.BadRequest()
		return
	}

	if err := h.users.Update(ctx, username, password, profile); err != nil {
		h.fail(c, res, err)
		return
	}

	res.Redirect("/profile")
}

func (h *Handler) logout(c *gin.Context) {
	req, res := h.exchange(c)

	if id, ok := req.SessionID(); ok {
		if err := h.sessions.Delete(c.Request.Context(), id); err != nil {
			requestLoggerFrom(c, h.logger).WithError(err).Warn("delete session")
		}
	}

	res.ClearSessionCookie()
	res.Redirect("/login")
}

func (h *Handler) notFound(c *gin.Context) {
	_, res := h.exchange(c)
	res.NotFound()
}

// authenticate resolves the session user. When there is none it writes the
// policy's anonymous outcome and returns false.
func (h *Handler) authenticate(c *gin.Context, req *requestContext, res *responder) (string, bool) {
	_, data, ok, err := req.CurrentSession()
	if err != nil {
		h.fail(c, res, err)
		return "", false
	}
	if !ok {
		if h.policy.RejectAnonymous {
			res.Unauthorized()
		} else {
			res.Redirect("/login")
		}
		return "", false
	}

	username, _ := data.Username()
	return username, true
}

func (h *Handler) userLookupFailed(c *gin.Context, res *responder, err error) {
	if errors.Is(err, service.ErrUserNotFound) {
		res.Conflict()
		return
	}
	h.fail(c, res, err)
}

func (h *Handler) render(c *gin.Context, res *responder, name page, data any) {
	html, err := renderPage(name, data)
	if err != nil {
		h.fail(c, res, err)
		return
	}
	res.OK(html)
}

func (h *Handler) fail(c *gin.Context, res *responder, err error) {
	requestLoggerFrom(c, h.logger).WithError(err).Error("request failed")
	res.InternalError()
}
