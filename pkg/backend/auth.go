package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Credentials are the admin login form values.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration are the admin signup form values.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the outcome of an auth call. Cookies are the backend's
// Set-Cookie values, to be relayed to the browser unchanged apart from their
// domain.
type Session struct {
	Message string
	Cookies []*http.Cookie
}

// Token returns the auth-token cookie value, if the backend issued one.
func (s *Session) Token() string {
	for _, c := range s.Cookies {
		if c.Name == AuthCookie {
			return c.Value
		}
	}
	return ""
}

// Login posts the credentials to /admin/login.
func (c *Client) Login(ctx context.Context, in Credentials) (*Session, error) {
	return c.auth(ctx, "login", in, nil)
}

// Register posts a new admin account to /admin/register.
func (c *Client) Register(ctx context.Context, in Registration) (*Session, error) {
	return c.auth(ctx, "register", in, nil)
}

// Logout invalidates the session identified by the browser's auth cookies.
// The returned session carries the backend's expiring cookies.
func (c *Client) Logout(ctx context.Context, cookies []*http.Cookie) (*Session, error) {
	return c.auth(ctx, "logout", struct{}{}, cookies)
}

func (c *Client) auth(ctx context.Context, action string, in any, cookies []*http.Cookie) (*Session, error) {
	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, request{
		method:      http.MethodPost,
		url:         c.endpoint("admin", action),
		body:        body,
		contentType: "application/json",
		cookies:     cookies,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	s := &Session{Cookies: relayable(resp.Cookies())}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var msg struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &msg) == nil {
		s.Message = msg.Message
	}
	return s, nil
}

// relayable keeps the auth cookies and clears their Domain so the browser
// scopes them to this site instead of the backend host.
func relayable(in []*http.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(in))
	for _, c := range in {
		if c.Name != AuthCookie && c.Name != RefreshCookie {
			continue
		}
		cp := *c
		cp.Domain = ""
		if cp.Path == "" || !strings.HasPrefix(cp.Path, "/") {
			cp.Path = "/"
		}
		cp.HttpOnly = true
		cp.Raw = ""
		cp.Unparsed = nil
		out = append(out, &cp)
	}
	return out
}

// ForwardCookies picks the auth cookies from an incoming browser request.
func ForwardCookies(r *http.Request) []*http.Cookie {
	var out []*http.Cookie
	for _, name := range []string{AuthCookie, RefreshCookie} {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			out = append(out, c)
		}
	}
	return out
}
