package handlers

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/username/bankconv/src/logger"
)

const (
	csrfCookieName = "csrf_token"
	csrfFieldName  = "csrf_token"
	csrfHeaderName = "X-CSRF-Token"
)

// ensureCSRFToken returns the token from the request cookie, issuing a fresh cookie when there is none.
func ensureCSRFToken(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	token := generateRandomToken()
	logger.FromContext(r.Context()).Debug("Generated CSRF token", "tokenPrefix", token[:5])

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		MaxAge:   3600,
	})
	return token
}

func generateRandomToken() string {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		logger.ErrorFromContext(context.TODO(), "Error generating random bytes for CSRF token", "error", err)
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// validCSRF is the double-submit check: the header or the already parsed form field must equal the cookie.
func validCSRF(r *http.Request) bool {
	token := r.Header.Get(csrfHeaderName)
	if token == "" && r.PostForm != nil {
		token = r.PostForm.Get(csrfFieldName)
	}
	cookie, errCookie := r.Cookie(csrfCookieName)

	if token != "" && errCookie == nil && subtle.ConstantTimeCompare([]byte(token), []byte(cookie.Value)) == 1 {
		return true
	}

	var cookieErrorForLog any
	if errCookie != nil {
		cookieErrorForLog = errCookie.Error()
	}
	logger.FromContext(r.Context()).Warn("CSRF Validation Failed",
		slog.String("method", r.Method),
		slog.String("url", r.URL.String()),
		slog.Bool("tokenPresent", token != ""),
		slog.Any("cookieError", cookieErrorForLog),
		slog.String("origin", r.Header.Get("Origin")),
		slog.String("referer", r.Header.Get("Referer")),
	)
	return false
}
