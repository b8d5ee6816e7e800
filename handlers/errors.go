package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/malariainfo"
	"github.com/dmitrymomot/malariainfo/middlewares"
	"github.com/dmitrymomot/malariainfo/pkg/backend"
	"github.com/dmitrymomot/malariainfo/views"
)

// ErrorResponse is the JSON body of a failed API request.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes an API error. Message is translated into the
// request locale.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorHandler renders handler errors. /api/ requests and clients asking
// for JSON get an ErrorResponse, everything else an error page in the
// visitor's language.
func ErrorHandler(site *Site) malariainfo.ErrorHandler {
	return func(c malariainfo.Context, err error) error {
		he := classify(err)

		switch {
		case he.Code >= http.StatusInternalServerError:
			c.LogError("request failed",
				slog.Int("status", he.Code),
				slog.String("path", c.Request().URL.Path),
				slog.Any("error", err),
			)
		case errors.Is(err, context.Canceled):
			c.LogDebug("request canceled", slog.String("path", c.Request().URL.Path))
		default:
			c.LogDebug("request rejected", slog.Int("status", he.Code), slog.Any("error", err))
		}

		b := site.bundle(c)
		if c.IsAPI() {
			return c.JSON(he.Code, ErrorResponse{Error: ErrorDetail{
				Code:    he.ErrorCode,
				Message: b.T(he.Message),
			}})
		}

		title := he.Title
		if title == "" {
			title = "errors.title"
		}
		return c.Render(he.Code, views.Error(site.meta(c, b), views.ErrorView{
			Title:    b.T(title),
			Message:  b.T(he.Message),
			RetryURL: he.RetryURL,
			Code:     he.Code,
		}))
	}
}

// NotFound is the handler for unmatched routes.
func NotFound(c malariainfo.Context) error {
	return malariainfo.ErrNotFound("errors.not_found", malariainfo.WithErrorCode("not_found"))
}

// MethodNotAllowed is the handler for known paths with the wrong method.
func MethodNotAllowed(c malariainfo.Context) error {
	return malariainfo.NewHTTPError(http.StatusMethodNotAllowed, "errors.not_found",
		malariainfo.WithErrorCode("method_not_allowed"))
}

// classify maps any error to an HTTPError with a translation key and a
// machine-readable code.
func classify(err error) *malariainfo.HTTPError {
	if he := malariainfo.AsHTTPError(err); he != nil {
		out := *he
		if out.Code < http.StatusBadRequest {
			out.Code = http.StatusInternalServerError
		}
		if out.Message == "" {
			out.Message = "errors.generic"
		}
		if out.ErrorCode == "" {
			out.ErrorCode = statusCode(out.Code)
		}
		return &out
	}

	if _, ok := middlewares.AsPanicError(err); ok {
		return malariainfo.ErrInternal("errors.generic", malariainfo.WithErrorCode("internal_error"))
	}
	if _, ok := middlewares.AsTimeoutError(err); ok || errors.Is(err, context.DeadlineExceeded) {
		return malariainfo.NewHTTPError(http.StatusGatewayTimeout, "errors.timeout", malariainfo.WithErrorCode("timeout"))
	}
	return malariainfo.ErrInternal("errors.generic", malariainfo.WithErrorCode("internal_error"))
}

// statusCode turns "Bad Gateway" into "bad_gateway".
func statusCode(code int) string {
	return strings.ReplaceAll(strings.ToLower(http.StatusText(code)), " ", "_")
}

// backendError maps a backend client failure for the document API: the
// backend's 4xx answers are passed on, anything else is a bad gateway.
func backendError(err error, retry string) error {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, backend.ErrNotFound):
		return malariainfo.ErrNotFound("errors.not_found", malariainfo.WithError(err), malariainfo.WithErrorCode("not_found"))
	case errors.Is(err, backend.ErrUnauthorized):
		return malariainfo.ErrUnauthorized("errors.unauthorized", malariainfo.WithError(err), malariainfo.WithErrorCode("unauthorized"))
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		return malariainfo.NewHTTPError(apiErr.Status, "errors.invalid_form",
			malariainfo.WithError(err), malariainfo.WithErrorCode(statusCode(apiErr.Status)))
	case errors.Is(err, context.DeadlineExceeded):
		return malariainfo.NewHTTPError(http.StatusGatewayTimeout, "errors.timeout",
			malariainfo.WithError(err), malariainfo.WithErrorCode("timeout"), malariainfo.WithRetryURL(retry))
	}
	return malariainfo.ErrBadGateway("errors.backend",
		malariainfo.WithError(err), malariainfo.WithErrorCode("backend_unavailable"), malariainfo.WithRetryURL(retry))
}
