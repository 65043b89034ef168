// Package auth manages the operator's cookie session with the API: login,
// logout, identity checks and the forced logout that follows a 401.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/resdesk/internal/adapter"
	reserrors "github.com/julianstephens/resdesk/internal/errors"
	"github.com/julianstephens/resdesk/internal/keyring"
	"github.com/julianstephens/resdesk/internal/logger"
	"github.com/julianstephens/resdesk/internal/models"
)

const (
	loginPath  = "login"
	logoutPath = "logout"
	mePath     = "me"
	adminPath  = "admin"
)

// ErrInvalidCredentials is returned when the API rejects a login
var ErrInvalidCredentials = errors.New("invalid credentials")

// Caller performs raw API round trips and exposes the session cookie jar
type Caller interface {
	Call(ctx context.Context, req adapter.Request) (adapter.Response, error)
	BaseURL() *url.URL
	Jar() http.CookieJar
}

// SessionStore persists sessions per API URL
type SessionStore interface {
	Get(apiURL string) (keyring.Session, error)
	Set(apiURL string, s keyring.Session) error
	Delete(apiURL string) error
}

type Service struct {
	api   Caller
	store SessionStore

	mu        sync.Mutex
	username  string
	listeners map[int]func()
	nextID    int

	log *log.Logger
}

func NewService(api Caller, store SessionStore) *Service {
	return &Service{
		api:       api,
		store:     store,
		listeners: make(map[int]func()),
		log:       logger.Component("auth"),
	}
}

func (s *Service) apiURL() string {
	return s.api.BaseURL().String()
}

// Restore loads a persisted session into the cookie jar. It reports
// whether one was found.
func (s *Service) Restore() (bool, error) {
	sess, err := s.store.Get(s.apiURL())
	if errors.Is(err, keyring.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	cookies := sess.HTTPCookies(time.Now())
	if len(cookies) == 0 {
		return false, nil
	}
	s.api.Jar().SetCookies(s.api.BaseURL(), cookies)

	s.mu.Lock()
	s.username = sess.Username
	s.mu.Unlock()
	return true, nil
}

// Username returns the name used for the current session, if known
func (s *Service) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login starts a cookie session and persists it
func (s *Service) Login(ctx context.Context, username, password string) (models.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.Identity{}, reserrors.NewValidationError("username", "is required")
	}
	if password == "" {
		return models.Identity{}, reserrors.NewValidationError("password", "is required")
	}

	_, err := s.api.Call(ctx, adapter.Request{
		Operation: reserrors.OpLogin,
		Method:    http.MethodPost,
		Path:      []string{adminPath, loginPath},
		Body:      credentials{Username: username, Password: password},
		Bare:      true,
	})
	if err != nil {
		if reserrors.IsAuthentication(err) {
			return models.Identity{}, ErrInvalidCredentials
		}
		return models.Identity{}, err
	}

	cookies := s.sessionCookies()
	if len(cookies) == 0 {
		return models.Identity{}, fmt.Errorf("login succeeded but the API set no session cookie")
	}
	if err := s.store.Set(s.apiURL(), keyring.FromHTTPCookies(username, cookies)); err != nil {
		// The session still works for this process
		s.log.Warn("Could not persist session", "error", err)
	}

	s.mu.Lock()
	s.username = username
	s.mu.Unlock()
	s.log.Info("Logged in", "username", username)

	return s.Me(ctx)
}

type meResponse struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Data     *struct {
		ID       string `json:"_id"`
		Username string `json:"username"`
	} `json:"data"`
}

// Me returns the identity behind the current session
func (s *Service) Me(ctx context.Context) (models.Identity, error) {
	res, err := s.api.Call(ctx, adapter.Request{
		Operation: reserrors.OpMe,
		Method:    http.MethodGet,
		Path:      []string{adminPath, mePath},
		Bare:      true,
	})
	if err != nil {
		return models.Identity{}, err
	}

	var me meResponse
	if err := json.Unmarshal(res.Data, &me); err != nil {
		return models.Identity{}, &reserrors.RemoteOperationError{
			Operation: reserrors.OpMe,
			Message:   "unexpected identity response",
			Err:       err,
		}
	}
	if me.Data != nil {
		me.ID, me.Username = me.Data.ID, me.Data.Username
	}
	return models.Identity{ID: me.ID, Name: me.Username}, nil
}

// Logout ends the session on the API and forgets it locally. The local
// session is dropped even when the API call fails.
func (s *Service) Logout(ctx context.Context) error {
	_, callErr := s.api.Call(ctx, adapter.Request{
		Operation: reserrors.OpLogout,
		Method:    http.MethodPost,
		Path:      []string{adminPath, logoutPath},
		Bare:      true,
	})
	s.clear()
	s.log.Info("Logged out")

	if callErr != nil && !reserrors.IsAuthentication(callErr) {
		return callErr
	}
	return nil
}

// ForceLogout drops the local session and tells every listener. The
// adapter calls it on any 401.
func (s *Service) ForceLogout() {
	s.log.Warn("Session expired, logging out")
	s.clear()

	s.mu.Lock()
	listeners := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// OnForcedLogout registers fn to run after a forced logout
func (s *Service) OnForcedLogout(fn func()) (remove func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Service) clear() {
	if err := s.store.Delete(s.apiURL()); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		s.log.Warn("Could not remove stored session", "error", err)
	}

	jar := s.api.Jar()
	scopes := s.sessionScopes()
	for _, c := range s.sessionCookies() {
		for _, u := range scopes {
			jar.SetCookies(u, []*http.Cookie{{Name: c.Name, Path: u.Path, MaxAge: -1}})
		}
	}

	s.mu.Lock()
	s.username = ""
	s.mu.Unlock()
}

// sessionScopes are the cookie paths a session may live under: the host
// root, the API root and the admin endpoints
func (s *Service) sessionScopes() []*url.URL {
	base := s.api.BaseURL()
	apiRoot := "/" + strings.Trim(base.Path, "/")

	var scopes []*url.URL
	seen := make(map[string]bool)
	for _, p := range []string{"/", apiRoot, path.Join(apiRoot, adminPath)} {
		if seen[p] {
			continue
		}
		seen[p] = true
		u := *base
		u.Path, u.RawPath = p, ""
		scopes = append(scopes, &u)
	}
	return scopes
}

// sessionCookies returns the API cookies held by the jar, each tagged with
// the first scope it is visible under
func (s *Service) sessionCookies() []*http.Cookie {
	var out []*http.Cookie
	seen := make(map[string]bool)
	for _, u := range s.sessionScopes() {
		for _, c := range s.api.Jar().Cookies(u) {
			if seen[c.Name] {
				continue
			}
			seen[c.Name] = true
			out = append(out, &http.Cookie{Name: c.Name, Value: c.Value, Path: u.Path})
		}
	}
	return out
}
