// Package adapter translates generic list/get/create/update/delete calls
// into REST requests against a resource-oriented API and normalizes what
// comes back.
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	reserrors "github.com/julianstephens/resdesk/internal/errors"
	"github.com/julianstephens/resdesk/internal/logger"
)

const requestIDHeader = "X-Request-ID"

var fallbackMessages = map[reserrors.Operation]string{
	reserrors.OpList:   "Error fetching list",
	reserrors.OpGetOne: "Error fetching record",
	reserrors.OpCreate: "Error creating record",
	reserrors.OpUpdate: "Error updating record",
	reserrors.OpDelete: "Error deleting record",
	reserrors.OpLogin:  "Invalid credentials",
	reserrors.OpLogout: "Error logging out",
	reserrors.OpMe:     "Error checking identity",
}

// Client talks to the reservation API. It holds no cache; every call is a
// fresh round trip.
type Client struct {
	baseURL        *url.URL
	httpClient     *http.Client
	limiter        *rate.Limiter
	onUnauthorized func()
	log            *log.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCookieJar shares a cookie jar with other collaborators (auth)
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.httpClient.Jar = jar
	}
}

// WithRateLimit caps outgoing requests per second. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUnauthorizedHandler is called whenever the API answers 401
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// New creates a client for the API at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API URL %q: scheme must be http or https", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Jar: jar, Timeout: 30 * time.Second},
		log:        logger.Component("adapter"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Jar returns the cookie jar carrying the session cookie
func (c *Client) Jar() http.CookieJar {
	return c.httpClient.Jar
}

// Ping checks that the API answers HTTP at all. Any status code counts as
// reachable.
func (c *Client) Ping(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.String(), nil)
	if err != nil {
		return 0, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	return res.StatusCode, nil
}

// List fetches one page of a resource
func (c *Client) List(ctx context.Context, resource string, params ListParams) (ListResult, error) {
	if err := requireResource(resource); err != nil {
		return ListResult{}, err
	}
	query, err := BuildListQuery(params)
	if err != nil {
		return ListResult{}, err
	}

	ok, err := c.Call(ctx, Request{
		Operation: reserrors.OpList,
		Resource:  resource,
		Method:    http.MethodGet,
		Path:      []string{resource},
		Query:     query,
	})
	if err != nil {
		return ListResult{}, err
	}

	records, err := normalizeRecords(ok.Data)
	if err != nil {
		return ListResult{}, c.shapeError(reserrors.OpList, resource, err)
	}
	return ListResult{Records: records, Total: ok.Total, HasTotal: ok.HasTotal}, nil
}

// GetOne fetches a single record
func (c *Client) GetOne(ctx context.Context, resource, id string) (Record, error) {
	if err := requireResourceAndID(resource, id); err != nil {
		return nil, err
	}
	return c.single(ctx, Request{
		Operation: reserrors.OpGetOne,
		Resource:  resource,
		Method:    http.MethodGet,
		Path:      []string{resource, id},
	})
}

// Create posts a new record
func (c *Client) Create(ctx context.Context, resource string, payload any) (Record, error) {
	if err := requireResource(resource); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, reserrors.NewValidationError("payload", "is required")
	}
	return c.single(ctx, Request{
		Operation: reserrors.OpCreate,
		Resource:  resource,
		Method:    http.MethodPost,
		Path:      []string{resource},
		Body:      payload,
	})
}

// Update replaces fields of an existing record
func (c *Client) Update(ctx context.Context, resource, id string, payload any) (Record, error) {
	if err := requireResourceAndID(resource, id); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, reserrors.NewValidationError("payload", "is required")
	}
	return c.single(ctx, Request{
		Operation: reserrors.OpUpdate,
		Resource:  resource,
		Method:    http.MethodPut,
		Path:      []string{resource, id},
		Body:      payload,
	})
}

// Delete removes a record and returns what the server reports as deleted
func (c *Client) Delete(ctx context.Context, resource, id string) (Record, error) {
	if err := requireResourceAndID(resource, id); err != nil {
		return nil, err
	}
	return c.single(ctx, Request{
		Operation: reserrors.OpDelete,
		Resource:  resource,
		Method:    http.MethodDelete,
		Path:      []string{resource, id},
	})
}

func (c *Client) single(ctx context.Context, req Request) (Record, error) {
	ok, err := c.Call(ctx, req)
	if err != nil {
		return nil, err
	}
	rec, err := normalizeRecord(ok.Data)
	if err != nil {
		return nil, c.shapeError(req.Operation, req.Resource, err)
	}
	return rec, nil
}

// Request is one API round trip
type Request struct {
	Operation reserrors.Operation
	Resource  string
	Method    string
	// Path segments below the base URL; each is escaped
	Path  []string
	Query url.Values
	Body  any
	// Bare marks endpoints that answer without the {success, data} envelope
	Bare bool
}

// Response is the payload of a successful envelope. HasTotal is false when
// the server omitted "total".
type Response struct {
	Data     json.RawMessage
	Total    int
	HasTotal bool
}

// Call performs a request and classifies the envelope. It is the only
// place responses are interpreted.
func (c *Client) Call(ctx context.Context, req Request) (Response, error) {
	fallback := fallbackMessages[req.Operation]

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Response{}, c.remoteError(req, fallback, 0, err)
		}
	}

	segments := make([]string, len(req.Path))
	for i, p := range req.Path {
		segments[i] = url.PathEscape(p)
	}
	target := c.baseURL.JoinPath(segments...)
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return Response{}, reserrors.NewValidationError("payload", "cannot encode: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return Response{}, c.remoteError(req, fallback, 0, err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set(requestIDHeader, requestID)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Warn("Request failed", "method", req.Method, "url", target.String(), "request_id", requestID, "error", err)
		return Response{}, c.remoteError(req, fallback, 0, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return Response{}, c.remoteError(req, fallback, res.StatusCode, err)
	}

	c.log.Debug("Request completed",
		"method", req.Method,
		"url", target.String(),
		"status", res.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if res.StatusCode == http.StatusUnauthorized {
		c.log.Warn("Session rejected by API", "operation", req.Operation, "resource", req.Resource)
		// A rejected login is bad credentials, not an expired session
		if c.onUnauthorized != nil && req.Operation != reserrors.OpLogin {
			c.onUnauthorized()
		}
		msg := ""
		if er, ok := parseBare(res.StatusCode, raw, "").(errResult); ok {
			msg = er.message
		}
		return Response{}, &reserrors.AuthenticationError{
			Resource:  req.Resource,
			Operation: req.Operation,
			Message:   msg,
		}
	}

	parse := parseEnvelope
	if req.Bare {
		parse = parseBare
	}

	switch r := parse(res.StatusCode, raw, fallback).(type) {
	case okResult:
		return Response{Data: r.data, Total: r.total, HasTotal: r.hasTotal}, nil
	case errResult:
		return Response{}, &reserrors.RemoteOperationError{
			Resource:   req.Resource,
			Operation:  req.Operation,
			Message:    r.message,
			StatusCode: res.StatusCode,
		}
	default:
		return Response{}, c.remoteError(req, fallback, res.StatusCode, fmt.Errorf("unexpected result %T", r))
	}
}

func (c *Client) remoteError(req Request, message string, status int, err error) error {
	return &reserrors.RemoteOperationError{
		Resource:   req.Resource,
		Operation:  req.Operation,
		Message:    message,
		StatusCode: status,
		Err:        err,
	}
}

func (c *Client) shapeError(op reserrors.Operation, resource string, err error) error {
	return &reserrors.RemoteOperationError{
		Resource:  resource,
		Operation: op,
		Message:   fallbackMessages[op],
		Err:       err,
	}
}

func requireResource(resource string) error {
	if strings.TrimSpace(resource) == "" {
		return reserrors.NewValidationError("resource", "is required")
	}
	return nil
}

func requireResourceAndID(resource, id string) error {
	if err := requireResource(resource); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return reserrors.NewValidationError("id", "is required")
	}
	return nil
}
