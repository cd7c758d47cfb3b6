// Package credential decides where a bearer token travels: an httpOnly
// cookie for browsers, or the Authorization header for other clients.
package credential

import (
	"net/http"
	"strings"
	"time"
)

// DefaultCookieName is the cookie the token is stored under.
const DefaultCookieName = "token"

// Options configures a Transport.
type Options struct {
	// CookieName defaults to DefaultCookieName.
	CookieName string
	// Production marks a public, TLS-terminated deployment: cookies become
	// Secure and SameSite=Strict. Otherwise SameSite=Lax without Secure.
	Production bool
}

// Transport reads and writes the credential on HTTP messages.
type Transport struct {
	name     string
	secure   bool
	sameSite http.SameSite
	now      func() time.Time
}

// NewTransport returns a Transport for opts.
func NewTransport(opts Options) *Transport {
	name := opts.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	sameSite := http.SameSiteLaxMode
	if opts.Production {
		sameSite = http.SameSiteStrictMode
	}
	return &Transport{
		name:     name,
		secure:   opts.Production,
		sameSite: sameSite,
		now:      time.Now,
	}
}

// CookieName returns the name of the credential cookie.
func (t *Transport) CookieName() string { return t.name }

// Extract returns the request's token. The cookie wins over the
// Authorization header when both are present.
func (t *Transport) Extract(r *http.Request) (string, bool) {
	if c, err := r.Cookie(t.name); err == nil && c.Value != "" {
		return c.Value, true
	}
	return bearerToken(r.Header.Get("Authorization"))
}

// Carried reports whether the request presented a non-empty credential cookie.
func (t *Transport) Carried(r *http.Request) bool {
	c, err := r.Cookie(t.name)
	return err == nil && c.Value != ""
}

// Attach writes token as the credential cookie, expiring at expiresAt.
func (t *Transport) Attach(w http.ResponseWriter, token string, expiresAt time.Time) {
	maxAge := int(expiresAt.Sub(t.now()).Seconds())
	if maxAge <= 0 {
		t.Clear(w)
		return
	}
	http.SetCookie(w, t.cookie(token, expiresAt.UTC(), maxAge))
}

// Clear overwrites the credential cookie with an empty, already expired one.
// It is safe to call whether or not the client holds the cookie.
func (t *Transport) Clear(w http.ResponseWriter) {
	http.SetCookie(w, t.cookie("", time.Unix(0, 0).UTC(), -1))
}

func (t *Transport) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     t.name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: t.sameSite,
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
