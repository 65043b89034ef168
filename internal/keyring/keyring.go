// Package keyring persists the API session cookie in the OS keyring, one
// entry per API host.
package keyring

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/resdesk/internal/constants"
)

var (
	// ErrNotFound is returned when no session is stored for the API host
	ErrNotFound = errors.New("no session stored in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Cookie is the persisted part of an http.Cookie
type Cookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
}

// Session is what gets stored for one API host
type Session struct {
	Username string    `json:"username"`
	Cookies  []Cookie  `json:"cookies"`
	SavedAt  time.Time `json:"saved_at"`
}

// HTTPCookies converts the stored cookies back for a cookie jar, dropping
// expired ones
func (s Session) HTTPCookies(now time.Time) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value, Path: c.Path, Expires: c.Expires})
	}
	return out
}

// FromHTTPCookies builds a session from the cookies a jar holds
func FromHTTPCookies(username string, cookies []*http.Cookie) Session {
	s := Session{Username: username, SavedAt: time.Now().UTC()}
	for _, c := range cookies {
		s.Cookies = append(s.Cookies, Cookie{Name: c.Name, Value: c.Value, Path: c.Path, Expires: c.Expires})
	}
	return s
}

// account is the keyring user for an API: "session-cookie@host:port"
func account(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid API URL %q", apiURL)
	}
	return constants.DefaultKeyringUser + "@" + u.Host, nil
}

// GetSession retrieves the session for apiURL.
// Returns ErrNotFound if none is stored.
func GetSession(apiURL string) (Session, error) {
	user, err := account(apiURL)
	if err != nil {
		return Session{}, err
	}
	raw, err := keyring.Get(constants.AppName, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}

	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Session{}, fmt.Errorf("stored session is corrupt: %w", err)
	}
	return s, nil
}

// SetSession stores the session for apiURL, replacing any previous one
func SetSession(apiURL string, s Session) error {
	if len(s.Cookies) == 0 {
		return errors.New("session has no cookies")
	}
	user, err := account(apiURL)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := keyring.Set(constants.AppName, user, string(raw)); err != nil {
		return fmt.Errorf("failed to store session in keyring: %w", err)
	}
	return nil
}

// DeleteSession removes the session for apiURL
func DeleteSession(apiURL string) error {
	user, err := account(apiURL)
	if err != nil {
		return err
	}
	if err := keyring.Delete(constants.AppName, user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete session from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// Store adapts the package functions to the auth session store
type Store struct{}

func (Store) Get(apiURL string) (Session, error) { return GetSession(apiURL) }
func (Store) Set(apiURL string, s Session) error { return SetSession(apiURL, s) }
func (Store) Delete(apiURL string) error { return DeleteSession(apiURL) }
