package sessions

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
)

const (
	sessionCookieName = "heartscript-session"

	userIDSessionKey     = "userID"
	userNameSessionKey   = "userName"
	userEmailSessionKey  = "userEmail"
	userAvatarSessionKey = "userProfilePic"
)

// SessionUser is the identity snapshot kept in the cookie after login.
type SessionUser struct {
	ID         uint
	Name       string
	Email      string
	ProfilePic string
}

type SessionStore interface {
	GetUserID(r *http.Request) uint
	GetUser(r *http.Request) *SessionUser
	SetUser(w http.ResponseWriter, r *http.Request, user SessionUser) error
	SetProfilePic(w http.ResponseWriter, r *http.Request, pic string) error
	ClearSession(w http.ResponseWriter, r *http.Request) error
}

type CookieSessionStore struct {
	store *sessions.CookieStore
}

func NewCookieSessionStore(secure bool, keyPairs ...[]byte) *CookieSessionStore {
	store := sessions.NewCookieStore(keyPairs...)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(30 * 24 * time.Hour / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieSessionStore{store: store}
}

// getSession never fails: a cookie that cannot be decoded yields a fresh
// session.
func (c *CookieSessionStore) getSession(r *http.Request) *sessions.Session {
	session, err := c.store.Get(r, sessionCookieName)
	if err != nil {
		log.Debug().Err(err).Msg("CookieSessionStore: discarding undecodable session")
	}
	return session
}

func (c *CookieSessionStore) GetUserID(r *http.Request) uint {
	userID, ok := c.getSession(r).Values[userIDSessionKey].(uint)
	if !ok {
		return 0
	}
	return userID
}

func (c *CookieSessionStore) GetUser(r *http.Request) *SessionUser {
	session := c.getSession(r)
	userID, ok := session.Values[userIDSessionKey].(uint)
	if !ok || userID == 0 {
		return nil
	}
	name, _ := session.Values[userNameSessionKey].(string)
	email, _ := session.Values[userEmailSessionKey].(string)
	pic, _ := session.Values[userAvatarSessionKey].(string)
	return &SessionUser{ID: userID, Name: name, Email: email, ProfilePic: pic}
}

func (c *CookieSessionStore) SetUser(w http.ResponseWriter, r *http.Request, user SessionUser) error {
	session := c.getSession(r)
	session.Values[userIDSessionKey] = user.ID
	session.Values[userNameSessionKey] = user.Name
	session.Values[userEmailSessionKey] = user.Email
	session.Values[userAvatarSessionKey] = user.ProfilePic
	return session.Save(r, w)
}

func (c *CookieSessionStore) SetProfilePic(w http.ResponseWriter, r *http.Request, pic string) error {
	session := c.getSession(r)
	session.Values[userAvatarSessionKey] = pic
	return session.Save(r, w)
}

func (c *CookieSessionStore) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session := c.getSession(r)
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
