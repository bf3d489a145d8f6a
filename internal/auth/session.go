package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"diradmin/internal/model"
)

const (
	cookieName    = "diradmin_session"
	sessionMaxAge = 24 * time.Hour
)

// SessionStore persists sessions. The Postgres implementation lives in
// internal/database; tests use an in-memory one.
type SessionStore interface {
	CreateSession(s model.Session) error
	GetSession(token string) (model.Session, bool, error)
	DeleteSession(token string) error
}

type SessionManager struct {
	secret string
	store  SessionStore
}

func NewSessionManager(secret string, store SessionStore) *SessionManager {
	return &SessionManager{secret: secret, store: store}
}

// CreateSession issues a signed session cookie carrying the account's role
// snapshot and returns the CSRF token bound to it.
func (sm *SessionManager) CreateSession(w http.ResponseWriter, username, role string) string {
	token := generateToken()
	csrfToken := generateToken()
	signed := sm.sign(token)
	now := time.Now()

	_ = sm.store.CreateSession(model.Session{
		Token:     signed,
		Username:  username,
		Role:      role,
		CSRFToken: csrfToken,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionMaxAge),
	})

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(sessionMaxAge.Seconds()),
	})
	return csrfToken
}

func (sm *SessionManager) DestroySession(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(cookieName)
	if err == nil {
		_ = sm.store.DeleteSession(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:   cookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// GetSession returns the caller's session, or false when there is no valid
// unexpired one.
func (sm *SessionManager) GetSession(r *http.Request) (model.Session, bool) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return model.Session{}, false
	}
	sess, ok, err := sm.store.GetSession(cookie.Value)
	if err != nil || !ok || time.Now().After(sess.ExpiresAt) {
		return model.Session{}, false
	}
	return sess, true
}

// ValidateCSRF rejects mutating form posts whose CSRF token does not match
// the session's.
func (sm *SessionManager) ValidateCSRF(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
			sess, ok := sm.GetSession(r)
			if !ok {
				http.Error(w, "Forbidden: No session", http.StatusForbidden)
				return
			}

			submitted := r.FormValue("csrf_token")
			if submitted == "" {
				submitted = r.Header.Get("X-CSRF-Token")
			}

			if submitted == "" || submitted != sess.CSRFToken {
				http.Error(w, "Forbidden: Invalid CSRF token", http.StatusForbidden)
				return
			}
		}
		next(w, r)
	}
}

func (sm *SessionManager) sign(token string) string {
	mac := hmac.New(sha256.New, []byte(sm.secret))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

func generateToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
