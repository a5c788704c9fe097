// internal/httpserver/cookie.go
//
// Session cookie handling.
// The cookie carries an HS256 JWT whose "sid" claim names the caller's session.
// The signing key is derived from SESSION_SECRET with HKDF-SHA256 so the raw
// secret is never used as a MAC key directly.

package httpserver

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

var errNoSession = errors.New("no valid session cookie")

const hkdfInfo = "globe session cookie v1"

// sessionClaims is the JWT payload of the session cookie.
type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// cookieJar signs, verifies, writes and clears session cookies.
type cookieJar struct {
	key    []byte
	name   string
	secure bool
	ttl    time.Duration
	now    func() time.Time
}

func newCookieJar(secret, name string, secure bool, ttl time.Duration) (*cookieJar, error) {
	if secret == "" {
		return nil, errors.New("httpserver: session secret must not be empty")
	}
	if name == "" {
		name = "globe_session"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return &cookieJar{key: key, name: name, secure: secure, ttl: ttl, now: time.Now}, nil
}

// sign creates a token for sid and returns it with its expiry.
func (j *cookieJar) sign(sid string) (string, time.Time, error) {
	now := j.now()
	exp := now.Add(j.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := t.SignedString(j.key)
	return ss, exp, err
}

// sessionID extracts and verifies the session id from the request cookie.
func (j *cookieJar) sessionID(r *http.Request) (string, error) {
	c, err := r.Cookie(j.name)
	if err != nil || c.Value == "" {
		return "", errNoSession
	}
	var claims sessionClaims
	tok, err := jwt.ParseWithClaims(c.Value, &claims, func(t *jwt.Token) (interface{}, error) {
		return j.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(j.now))
	if err != nil || !tok.Valid || claims.SID == "" {
		return "", errNoSession
	}
	return claims.SID, nil
}

// set writes a fresh cookie for sid.
func (j *cookieJar) set(w http.ResponseWriter, sid string) error {
	token, exp, err := j.sign(sid)
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     j.name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: j.sameSite(),
		Expires:  exp,
	})
	return nil
}

// clear deletes the session cookie.
func (j *cookieJar) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     j.name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: j.sameSite(),
		MaxAge:   -1,
	})
}

// sameSite: None is required for cross-site use when Secure, Lax otherwise.
func (j *cookieJar) sameSite() http.SameSite {
	if j.secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
