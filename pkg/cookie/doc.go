// Package cookie writes the cookies the site owns or relays.
//
//   - SetLocale writes NEXT_LOCALE (readable by scripts, 30 days).
//   - Relay re-issues the backend's auth-token and refreshToken cookies on
//     this site's domain, HttpOnly.
//   - SetFlash and Flash carry a one-shot notice across a redirect. The value
//     is HMAC-signed so it cannot be forged into an arbitrary message key.
//
// All cookies share the Manager's Secure and SameSite settings.
package cookie
