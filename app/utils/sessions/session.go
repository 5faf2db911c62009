package sessions

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	sessionCookieName = "modaltela-session"

	sessionKeyValue = "sessionKey"
)

// SessionStore keeps the anonymous session key that identifies guest carts and orders.
type SessionStore interface {
	GetSessionKey(r *http.Request) string
	EnsureSessionKey(w http.ResponseWriter, r *http.Request) (string, error)
	ClearSession(w http.ResponseWriter, r *http.Request) error
}

type CookieSessionStore struct {
	store *sessions.CookieStore
}

func NewCookieSessionStore(ttl time.Duration, secure bool, keyPairs ...[]byte) *CookieSessionStore {
	store := sessions.NewCookieStore(keyPairs...)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieSessionStore{store: store}
}

// getSession always returns a usable session; a cookie that fails to decode
// (rotated keys, tampering) is replaced by a fresh one.
func (c *CookieSessionStore) getSession(r *http.Request) *sessions.Session {
	session, err := c.store.Get(r, sessionCookieName)
	if err != nil {
		log.Printf("CookieSessionStore.getSession: discarding unreadable session: %v", err)
	}
	return session
}

func (c *CookieSessionStore) GetSessionKey(r *http.Request) string {
	session := c.getSession(r)
	key, ok := session.Values[sessionKeyValue].(string)
	if !ok {
		return ""
	}
	return key
}

// EnsureSessionKey returns the current key, minting and saving a new one when absent.
func (c *CookieSessionStore) EnsureSessionKey(w http.ResponseWriter, r *http.Request) (string, error) {
	session := c.getSession(r)
	if key, ok := session.Values[sessionKeyValue].(string); ok && key != "" {
		return key, nil
	}

	key := uuid.New().String()
	session.Values[sessionKeyValue] = key
	if err := session.Save(r, w); err != nil {
		return "", err
	}
	return key, nil
}

func (c *CookieSessionStore) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session := c.getSession(r)
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
