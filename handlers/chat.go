package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/malariainfo"
	"github.com/dmitrymomot/malariainfo/pkg/chat"
	"github.com/dmitrymomot/malariainfo/views"
)

// SessionCookie holds the visitor's chat session id.
const SessionCookie = "chat_session"

// ChatSessions is the session registry. Implemented by *chat.Sessions.
type ChatSessions interface {
	Create(ctx context.Context, locale string) (*chat.Widget, error)
	Get(ctx context.Context, id string) (*chat.Widget, error)
	Delete(ctx context.Context, id string) error
	Subscribe(ctx context.Context, id string) (<-chan chat.Event, func(), error)
}

// SelectRequest is the body of POST /api/chat/sessions/{id}/select.
type SelectRequest struct {
	Option string `json:"option"`
}

// CreateSessionRequest is the optional body of POST /api/chat/sessions.
type CreateSessionRequest struct {
	Locale string `json:"locale"`
}

// Chat serves the assistant page, its form fallbacks, the JSON API and the
// WebSocket event stream.
type Chat struct {
	site         *Site
	sessions     ChatSessions
	ids          malariainfo.Extractor
	upgrader     websocket.Upgrader
	cookieTTL    time.Duration
	pingInterval time.Duration
}

// ChatOption configures the Chat handler.
type ChatOption func(*Chat)

// WithSessionCookieTTL sets the lifetime of the session cookie. Match it to
// the session TTL.
func WithSessionCookieTTL(d time.Duration) ChatOption {
	return func(h *Chat) {
		if d > 0 {
			h.cookieTTL = d
		}
	}
}

// WithPingInterval sets how often idle WebSocket connections are pinged.
func WithPingInterval(d time.Duration) ChatOption {
	return func(h *Chat) {
		if d > 0 {
			h.pingInterval = d
		}
	}
}

// WithOriginCheck replaces the WebSocket origin check. The default accepts
// same-host origins only.
func WithOriginCheck(fn func(r *http.Request) bool) ChatOption {
	return func(h *Chat) {
		h.upgrader.CheckOrigin = fn
	}
}

// NewChat creates the chat handler.
func NewChat(site *Site, sessions ChatSessions, opts ...ChatOption) *Chat {
	h := &Chat{
		site:     site,
		sessions: sessions,
		ids: malariainfo.NewExtractor(
			malariainfo.FromParam("id"),
			malariainfo.FromQuery("session"),
			malariainfo.FromCookie(SessionCookie),
		),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		cookieTTL:    chat.DefaultSessionTTL,
		pingInterval: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes implements malariainfo.Handler.
func (h *Chat) Routes(r malariainfo.Router) {
	r.Group(func(r malariainfo.Router) {
		r.Use(h.site.Localized())
		r.GET("/{locale}/chat", h.page)
		r.POST("/{locale}/chat/select", h.selectForm)
		r.POST("/{locale}/chat/reset", h.resetForm)
	})

	r.Route("/api/chat", func(r malariainfo.Router) {
		r.POST("/sessions", h.create)
		r.GET("/sessions/{id}", h.show)
		r.DELETE("/sessions/{id}", h.remove)
		r.POST("/sessions/{id}/select", h.selectOption)
		r.POST("/sessions/{id}/reset", h.reset)
		r.GET("/ws", h.stream)
	})
}

// Pages

func (h *Chat) page(c malariainfo.Context) error {
	w, restarted, err := h.visitorSession(c)
	if err != nil {
		return err
	}
	m := h.site.Meta(c)
	if restarted {
		m.Flash = m.T("chat.expired")
	}
	return c.Render(http.StatusOK, views.Chat(m, w.Snapshot()))
}

func (h *Chat) selectForm(c malariainfo.Context) error {
	w, restarted, err := h.visitorSession(c)
	if err != nil {
		return err
	}
	if restarted {
		c.SetFlash(flashKey, "chat.expired")
		return c.Redirect(http.StatusSeeOther, c.LocalePath("/chat"))
	}

	switch err := w.SelectOption(c.Form("option")); {
	case errors.Is(err, chat.ErrBusy):
		c.SetFlash(flashKey, "chat.busy")
	case err != nil:
		c.LogDebug("chat option rejected", "error", err)
		c.SetFlash(flashKey, "errors.chat_option")
	}
	return c.Redirect(http.StatusSeeOther, c.LocalePath("/chat"))
}

func (h *Chat) resetForm(c malariainfo.Context) error {
	w, restarted, err := h.visitorSession(c)
	if err != nil {
		return err
	}
	if !restarted {
		w.Reset()
	}
	return c.Redirect(http.StatusSeeOther, c.LocalePath("/chat"))
}

// visitorSession returns the session named by the visitor's cookie,
// starting a new one when there is none or it expired. restarted reports
// that an expired session was replaced. The session follows the page
// language.
func (h *Chat) visitorSession(c malariainfo.Context) (*chat.Widget, bool, error) {
	id, _ := c.Cookie(SessionCookie)
	if id != "" {
		w, err := h.sessions.Get(c, id)
		switch {
		case err == nil:
			if w.Locale() != c.Locale() {
				w.SetLocale(c.Locale())
			}
			return w, false, nil
		case !errors.Is(err, chat.ErrSessionNotFound):
			return nil, false, err
		}
	}

	w, err := h.sessions.Create(c, c.Locale())
	if err != nil {
		return nil, false, err
	}
	h.setCookie(c, w.ID())
	return w, id != "", nil
}

func (h *Chat) setCookie(c malariainfo.Context, id string) {
	c.Cookies().Set(c.Response(), SessionCookie, id, int(h.cookieTTL/time.Second))
}

// API

func (h *Chat) create(c malariainfo.Context) error {
	var req CreateSessionRequest
	if err := c.DecodeJSON(&req); err != nil {
		return err
	}
	l, ok := h.site.resolver.Supported(req.Locale)
	if !ok {
		l = h.site.locale(c)
	}

	w, err := h.sessions.Create(c, l)
	if err != nil {
		return err
	}
	h.setCookie(c, w.ID())
	c.SetHeader("Location", "/api/chat/sessions/"+w.ID())
	return c.JSON(http.StatusCreated, w.Snapshot())
}

func (h *Chat) show(c malariainfo.Context) error {
	w, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w.Snapshot())
}

func (h *Chat) remove(c malariainfo.Context) error {
	id, _ := h.ids.Extract(c)
	if err := h.sessions.Delete(c, id); err != nil {
		return err
	}
	if v, _ := c.Cookie(SessionCookie); v == id {
		c.Cookies().Delete(c.Response(), SessionCookie)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Chat) selectOption(c malariainfo.Context) error {
	w, err := h.session(c)
	if err != nil {
		return err
	}
	var req SelectRequest
	if err := c.DecodeJSON(&req); err != nil {
		return err
	}
	if err := w.SelectOption(req.Option); err != nil {
		return chatError(err)
	}
	return c.JSON(http.StatusOK, w.Snapshot())
}

func (h *Chat) reset(c malariainfo.Context) error {
	w, err := h.session(c)
	if err != nil {
		return err
	}
	w.Reset()
	return c.JSON(http.StatusOK, w.Snapshot())
}

func (h *Chat) session(c malariainfo.Context) (*chat.Widget, error) {
	id, ok := h.ids.Extract(c)
	if !ok {
		return nil, chatError(chat.ErrSessionNotFound)
	}
	w, err := h.sessions.Get(c, id)
	if err != nil {
		return nil, chatError(err)
	}
	return w, nil
}

// chatError maps widget and registry errors to API errors.
func chatError(err error) error {
	switch {
	case errors.Is(err, chat.ErrSessionNotFound), errors.Is(err, chat.ErrClosed):
		return malariainfo.ErrNotFound("errors.chat_session", malariainfo.WithError(err), malariainfo.WithErrorCode("session_not_found"))
	case errors.Is(err, chat.ErrBusy):
		return malariainfo.ErrConflict("chat.busy", malariainfo.WithError(err), malariainfo.WithErrorCode("busy"))
	case errors.Is(err, chat.ErrTerminal):
		return malariainfo.ErrConflict("chat.ended", malariainfo.WithError(err), malariainfo.WithErrorCode("conversation_ended"))
	case errors.Is(err, chat.ErrInvalidOption), errors.Is(err, chat.ErrNotStarted):
		return malariainfo.ErrUnprocessable("errors.chat_option", malariainfo.WithError(err), malariainfo.WithErrorCode("invalid_option"))
	}
	return err
}
