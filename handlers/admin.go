package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/malariainfo"
	"github.com/dmitrymomot/malariainfo/middlewares"
	"github.com/dmitrymomot/malariainfo/pkg/backend"
	"github.com/dmitrymomot/malariainfo/views"
)

// multipart overhead allowed on top of the file size limit
const formOverhead = 1 << 20

// AdminBackend is the part of the backend client the admin screens use.
// Implemented by *backend.Client.
type AdminBackend interface {
	Catalog
	Login(ctx context.Context, in backend.Credentials) (*backend.Session, error)
	Register(ctx context.Context, in backend.Registration) (*backend.Session, error)
	Logout(ctx context.Context, cookies []*http.Cookie) (*backend.Session, error)
	UploadDocument(ctx context.Context, token string, up backend.Upload) (*backend.Document, error)
	UpdateDocument(ctx context.Context, token, id string, in backend.DocumentInput) (*backend.Document, error)
	DeleteDocument(ctx context.Context, token, id string) error
}

// Admin serves sign in, sign up and the document management screens. The
// backend owns accounts and sessions; this handler relays its cookies.
type Admin struct {
	site      *Site
	backend   AdminBackend
	maxUpload int64
}

// AdminOption configures the Admin handler.
type AdminOption func(*Admin)

// WithMaxUploadSize caps uploaded files. Defaults to backend.DefaultMaxUploadSize.
func WithMaxUploadSize(n int64) AdminOption {
	return func(a *Admin) {
		if n > 0 {
			a.maxUpload = n
		}
	}
}

// NewAdmin creates the admin handler.
func NewAdmin(site *Site, b AdminBackend, opts ...AdminOption) *Admin {
	a := &Admin{site: site, backend: b, maxUpload: backend.DefaultMaxUploadSize}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Routes implements malariainfo.Handler.
func (h *Admin) Routes(r malariainfo.Router) {
	r.Group(func(r malariainfo.Router) {
		r.Use(h.site.Localized())

		r.GET("/{locale}/admin/login", h.loginForm)
		r.POST("/{locale}/admin/login", h.login)
		r.GET("/{locale}/admin/signup", h.signupForm)
		r.POST("/{locale}/admin/signup", h.signup)
		r.POST("/{locale}/admin/logout", h.logout)

		r.Group(func(r malariainfo.Router) {
			r.Use(middlewares.RequireAuthCookie())
			r.GET("/{locale}/admin", h.index)
			r.GET("/{locale}/admin/documents", h.documents)
			r.POST("/{locale}/admin/documents", h.upload)
			r.GET("/{locale}/admin/documents/{id}", h.edit)
			r.POST("/{locale}/admin/documents/{id}", h.update)
			r.POST("/{locale}/admin/documents/{id}/delete", h.delete)
		})
	})
}

func (h *Admin) index(c malariainfo.Context) error {
	return c.Redirect(http.StatusSeeOther, c.LocalePath("/admin/documents"))
}

func (h *Admin) loginForm(c malariainfo.Context) error {
	next := safeNext(c.Query("next"), "")
	if signedIn(c) {
		return c.Redirect(http.StatusSeeOther, safeNext(next, c.LocalePath("/admin/documents")))
	}
	return c.Render(http.StatusOK, views.Login(h.site.Meta(c), views.LoginForm{Next: next}))
}

func (h *Admin) login(c malariainfo.Context) error {
	form := views.LoginForm{
		Email: strings.TrimSpace(c.Form("email")),
		Next:  safeNext(c.Form("next"), ""),
	}
	password := c.Form("password")
	if form.Email == "" || password == "" {
		form.Error = c.T("errors.invalid_form")
		return c.Render(http.StatusUnprocessableEntity, views.Login(h.site.Meta(c), form))
	}

	sess, err := h.backend.Login(c, backend.Credentials{Email: form.Email, Password: password})
	if err != nil {
		status, key := formFailure(err, "admin.login.failed")
		c.LogWarn("admin login failed", "status", status, "error", err)
		form.Error = c.T(key)
		return c.Render(status, views.Login(h.site.Meta(c), form))
	}

	c.Cookies().Relay(c.Response(), sess.Cookies)
	c.LogInfo("admin signed in")
	return c.Redirect(http.StatusSeeOther, safeNext(form.Next, c.LocalePath("/admin/documents")))
}

func (h *Admin) signupForm(c malariainfo.Context) error {
	return c.Render(http.StatusOK, views.Signup(h.site.Meta(c), views.SignupForm{}))
}

func (h *Admin) signup(c malariainfo.Context) error {
	form := views.SignupForm{
		Name:  strings.TrimSpace(c.Form("name")),
		Email: strings.TrimSpace(c.Form("email")),
	}
	password := c.Form("password")
	if form.Name == "" || form.Email == "" || password == "" {
		form.Error = c.T("errors.invalid_form")
		return c.Render(http.StatusUnprocessableEntity, views.Signup(h.site.Meta(c), form))
	}

	sess, err := h.backend.Register(c, backend.Registration{Name: form.Name, Email: form.Email, Password: password})
	if err != nil {
		status, key := formFailure(err, "admin.signup.failed")
		c.LogWarn("admin signup failed", "status", status, "error", err)
		form.Error = c.T(key)
		return c.Render(status, views.Signup(h.site.Meta(c), form))
	}

	if sess.Token() == "" {
		c.SetFlash(flashKey, "admin.signup.created")
		return c.Redirect(http.StatusSeeOther, c.LocalePath("/admin/login"))
	}
	c.Cookies().Relay(c.Response(), sess.Cookies)
	return c.Redirect(http.StatusSeeOther, c.LocalePath("/admin/documents"))
}

func (h *Admin) logout(c malariainfo.Context) error {
	if cookies := backend.ForwardCookies(c.Request()); len(cookies) > 0 {
		if _, err := h.backend.Logout(c, cookies); err != nil {
			c.LogWarn("backend logout failed", "error", err)
		}
	}
	c.Cookies().ClearAuth(c.Response())
	return c.Redirect(http.StatusSeeOther, c.LocalePath("/"))
}

func (h *Admin) documents(c malariainfo.Context) error {
	docs, err := h.backend.ListDocuments(c)
	if err != nil {
		c.LogWarn("list documents failed", "error", err)
		return c.Render(http.StatusBadGateway, views.AdminDocuments(h.site.Meta(c), nil, true, ""))
	}
	return c.Render(http.StatusOK, views.AdminDocuments(h.site.Meta(c), docs, false, ""))
}

func (h *Admin) upload(c malariainfo.Context) error {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, h.maxUpload+formOverhead)

	in := h.documentInput(c)
	fh, formErr := h.uploadFile(c, in)
	if formErr != "" {
		return h.rejectUpload(c, formErr)
	}

	up, closeFile, err := backend.OpenUpload(fh, in, h.maxUpload)
	var ve *backend.ValidationError
	if errors.As(err, &ve) {
		c.LogInfo("upload rejected", "code", ve.Code, "reason", ve.Message)
		return h.rejectUpload(c, c.T("errors.invalid_form")+" "+ve.Message)
	}
	if err != nil {
		return err
	}
	defer func() { _ = closeFile() }()

	if _, err := h.backend.UploadDocument(c, authToken(c), up); err != nil {
		return h.mutationFailed(c, err)
	}
	c.SetFlash(flashKey, "admin.documents.saved")
	return c.Redirect(http.StatusSeeOther, c.LocalePath("/admin/documents"))
}

func (h *Admin) uploadFile(c malariainfo.Context, in backend.DocumentInput) (*multipart.FileHeader, string) {
	_, fh, err := c.FormFile("file")
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return nil, c.T("errors.invalid_form") + " " + backend.ErrFileTooLarge.Error()
	case err != nil:
		return nil, c.T("errors.invalid_form")
	case in.Title == "":
		return nil, c.T("errors.invalid_form")
	}
	return fh, ""
}

func (h *Admin) rejectUpload(c malariainfo.Context, formErr string) error {
	docs, err := h.backend.ListDocuments(c)
	return c.Render(http.StatusUnprocessableEntity, views.AdminDocuments(h.site.Meta(c), docs, err != nil, formErr))
}

func (h *Admin) edit(c malariainfo.Context) error {
	id := c.Param("id")
	d, err := h.backend.GetDocument(c, id)
	if err != nil {
		return backendError(err, c.LocalePath("/admin/documents/"+url.PathEscape(id)))
	}
	return c.Render(http.StatusOK, views.AdminDocumentEdit(h.site.Meta(c), *d, ""))
}

func (h *Admin) update(c malariainfo.Context) error {
	id := c.Param("id")
	in := h.documentInput(c)
	if in.Title == "" {
		d := backend.Document{
			ID:          id,
			Description: in.Description,
			Category:    in.Category,
			Language:    in.Language,
		}
		return c.Render(http.StatusUnprocessableEntity, views.AdminDocumentEdit(h.site.Meta(c), d, c.T("errors.invalid_form")))
	}

	if _, err := h.backend.UpdateDocument(c, authToken(c), id, in); err != nil {
		return h.mutationFailed(c, err)
	}
	c.SetFlash(flashKey, "admin.documents.saved")
	return c.Redirect(http.StatusSeeOther, c.LocalePath("/admin/documents"))
}

func (h *Admin) delete(c malariainfo.Context) error {
	if err := h.backend.DeleteDocument(c, authToken(c), c.Param("id")); err != nil {
		return h.mutationFailed(c, err)
	}
	c.SetFlash(flashKey, "admin.documents.deleted")
	return c.Redirect(http.StatusSeeOther, c.LocalePath("/admin/documents"))
}

// mutationFailed sends the admin back to the list with a notice, or to the
// login form when the backend no longer accepts the session.
func (h *Admin) mutationFailed(c malariainfo.Context, err error) error {
	if errors.Is(err, backend.ErrUnauthorized) {
		c.LogInfo("admin session rejected by backend", "error", err)
		c.Cookies().ClearAuth(c.Response())
		login := c.LocalePath("/admin/login") + "?next=" + url.QueryEscape(c.LocalePath("/admin/documents"))
		return c.Redirect(http.StatusSeeOther, login)
	}
	c.LogWarn("document change failed", "error", err)
	c.SetFlash(flashKey, "admin.documents.failed")
	return c.Redirect(http.StatusSeeOther, c.LocalePath("/admin/documents"))
}

func (h *Admin) documentInput(c malariainfo.Context) backend.DocumentInput {
	lang, ok := h.site.resolver.Supported(c.Form("language"))
	if !ok {
		lang = c.Locale()
	}
	return backend.DocumentInput{
		Title:       strings.TrimSpace(c.Form("title")),
		Description: strings.TrimSpace(c.Form("description")),
		Category:    strings.TrimSpace(c.Form("category")),
		Language:    lang,
	}
}

func authToken(c malariainfo.Context) string {
	v, _ := c.Cookie(backend.AuthCookie)
	return v
}

// formFailure picks the status and message of a rejected auth form.
// Backend 4xx answers mean bad input; anything else means it is down.
func formFailure(err error, rejected string) (int, string) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		return http.StatusUnauthorized, rejected
	}
	return http.StatusBadGateway, "errors.backend"
}

// safeNext accepts only same-site absolute paths.
func safeNext(next, fallback string) string {
	if next == "" || next[0] != '/' || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
