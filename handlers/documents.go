package handlers

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/malariainfo"
	"github.com/dmitrymomot/malariainfo/middlewares"
	"github.com/dmitrymomot/malariainfo/pkg/backend"
)

// DocumentList is the JSON body of GET /api/documents.
type DocumentList struct {
	Documents []backend.Document `json:"documents"`
}

// Documents proxies the document backend as JSON for client scripts.
// Writes forward the browser's auth cookie, so only signed-in admins
// can use them.
type Documents struct {
	backend   AdminBackend
	maxUpload int64
}

// NewDocuments creates the document API handler.
func NewDocuments(b AdminBackend) *Documents {
	return &Documents{backend: b, maxUpload: backend.DefaultMaxUploadSize}
}

// Routes implements malariainfo.Handler.
func (h *Documents) Routes(r malariainfo.Router) {
	r.Route("/api/documents", func(r malariainfo.Router) {
		r.GET("/", h.list)
		r.GET("/{id}", h.show)

		r.Group(func(r malariainfo.Router) {
			r.Use(middlewares.RequireAuthCookie())
			r.POST("/", h.create)
			r.PUT("/{id}", h.update)
			r.DELETE("/{id}", h.delete)
		})
	})
}

func (h *Documents) list(c malariainfo.Context) error {
	docs, err := h.backend.ListDocuments(c)
	if err != nil {
		return backendError(err, "")
	}
	if lang := c.Query("language"); lang != "" {
		filtered := docs[:0:0]
		for _, d := range docs {
			if d.Language == lang {
				filtered = append(filtered, d)
			}
		}
		docs = filtered
	}
	if docs == nil {
		docs = []backend.Document{}
	}
	return c.JSON(http.StatusOK, DocumentList{Documents: docs})
}

func (h *Documents) show(c malariainfo.Context) error {
	d, err := h.backend.GetDocument(c, c.Param("id"))
	if err != nil {
		return backendError(err, "")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Documents) create(c malariainfo.Context) error {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, h.maxUpload+formOverhead)

	_, fh, err := c.FormFile("file")
	if err != nil {
		return malariainfo.ErrBadRequest("errors.invalid_form", malariainfo.WithError(err), malariainfo.WithErrorCode("invalid_form"))
	}
	in := backend.DocumentInput{
		Title:       c.Form("title"),
		Description: c.Form("description"),
		Category:    c.Form("category"),
		Language:    c.Form("language"),
	}
	if in.Title == "" {
		return malariainfo.ErrUnprocessable("errors.invalid_form", malariainfo.WithErrorCode("invalid_form"))
	}

	up, closeFile, err := backend.OpenUpload(fh, in, h.maxUpload)
	var ve *backend.ValidationError
	if errors.As(err, &ve) {
		return malariainfo.ErrUnprocessable("errors.invalid_form", malariainfo.WithError(err), malariainfo.WithErrorCode(ve.Code))
	}
	if err != nil {
		return err
	}
	defer func() { _ = closeFile() }()

	d, err := h.backend.UploadDocument(c, authToken(c), up)
	if err != nil {
		return backendError(err, "")
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Documents) update(c malariainfo.Context) error {
	var in backend.DocumentInput
	if err := c.DecodeJSON(&in); err != nil {
		return err
	}
	if in.Title == "" {
		return malariainfo.ErrUnprocessable("errors.invalid_form", malariainfo.WithErrorCode("invalid_form"))
	}
	d, err := h.backend.UpdateDocument(c, authToken(c), c.Param("id"), in)
	if err != nil {
		return backendError(err, "")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Documents) delete(c malariainfo.Context) error {
	if err := h.backend.DeleteDocument(c, authToken(c), c.Param("id")); err != nil {
		return backendError(err, "")
	}
	return c.NoContent(http.StatusNoContent)
}
