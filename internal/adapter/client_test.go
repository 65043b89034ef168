package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reserrors "github.com/julianstephens/resdesk/internal/errors"
)

type captured struct {
	method    string
	path      string
	rawQuery  string
	query     map[string][]string
	body      []byte
	requestID string
}

func newServer(t *testing.T, status int, response string) (*Client, *captured, *atomic.Int32) {
	t.Helper()
	got := &captured{}
	calls := &atomic.Int32{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		got.method = r.Method
		got.path = r.URL.EscapedPath()
		got.rawQuery = r.URL.RawQuery
		got.query = r.URL.Query()
		got.body, _ = io.ReadAll(r.Body)
		got.requestID = r.Header.Get(requestIDHeader)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	require.NoError(t, err)
	return c, got, calls
}

func TestListRewritesIdentity(t *testing.T) {
	c, _, _ := newServer(t, http.StatusOK, `{
		"success": true,
		"total": 2,
		"data": [
			{"_id": "a1", "orderNumber": "1001", "name": "Lan", "guestCount": 4, "status": "Pending", "area": "HÀ NỘI"},
			{"_id": "b2", "orderNumber": "1002", "name": "Minh", "guestCount": 2, "status": "Ready", "message": null}
		]
	}`)

	res, err := c.List(context.Background(), "reservations", ListParams{})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 2, res.Total)
	assert.True(t, res.HasTotal)

	first := res.Records[0]
	assert.Equal(t, "a1", first.ID())
	assert.NotContains(t, first, "_id")
	assert.Equal(t, "1001", first["orderNumber"])
	assert.Equal(t, "Lan", first["name"])
	assert.Equal(t, json.Number("4"), first["guestCount"])
	assert.Equal(t, "Pending", first["status"])
	assert.Equal(t, "HÀ NỘI", first["area"])
	assert.Len(t, first, 6)

	second := res.Records[1]
	assert.Equal(t, "b2", second.ID())
	assert.Contains(t, second, "message")
	assert.Nil(t, second["message"])
}

func TestListWithoutTotal(t *testing.T) {
	c, _, _ := newServer(t, http.StatusOK, `{"success": true, "data": [{"_id": "a1"}]}`)

	res, err := c.List(context.Background(), "reservations", ListParams{})
	require.NoError(t, err)
	assert.Len(t, res.Records, 1)
	assert.False(t, res.HasTotal)
	assert.Zero(t, res.Total)
}

func TestGetOneRewritesIdentity(t *testing.T) {
	c, got, _ := newServer(t, http.StatusOK, `{"success": true, "data": {"_id": "a1", "name": "Lan", "hour": "09"}}`)

	rec, err := c.GetOne(context.Background(), "reservations", "a1")
	require.NoError(t, err)

	assert.Equal(t, Record{"id": "a1", "name": "Lan", "hour": "09"}, rec)
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/reservations/a1", got.path)
	assert.NotEmpty(t, got.requestID)
}

func TestGetOneEscapesID(t *testing.T) {
	c, got, _ := newServer(t, http.StatusOK, `{"success": true, "data": {"_id": "a/b"}}`)

	_, err := c.GetOne(context.Background(), "reservations", "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/reservations/a%2Fb", got.path)
}

func TestListDefaultSort(t *testing.T) {
	c, got, _ := newServer(t, http.StatusOK, `{"success": true, "data": [], "total": 0}`)

	_, err := c.List(context.Background(), "reservations", ListParams{
		Pagination: Pagination{Page: 2, PageSize: 10},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"-updatedAt"}, got.query["sort"])
	assert.Equal(t, []string{"2"}, got.query["page"])
	assert.Equal(t, []string{"10"}, got.query["limit"])
}

func TestListExplicitSortAndFilters(t *testing.T) {
	c, got, _ := newServer(t, http.StatusOK, `{"success": true, "data": []}`)

	_, err := c.List(context.Background(), "reservations", ListParams{
		Filters: []Filter{Eq("status", "Pending")},
		Sorters: []Sorter{{Field: "name", Order: Asc}, {Field: "createdAt", Order: Desc}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"name,-createdAt"}, got.query["sort"])
	assert.Equal(t, []string{"Pending"}, got.query["status"])
	assert.NotContains(t, got.query, "page")
}

func TestListSingleAscendingSorter(t *testing.T) {
	c, got, _ := newServer(t, http.StatusOK, `{"success": true, "data": []}`)

	_, err := c.List(context.Background(), "reservations", ListParams{
		Sorters: []Sorter{{Field: "name", Order: Asc}},
	})
	require.NoError(t, err)
	assert.Equal(t, "sort=name", got.rawQuery)
}

func TestListRejectsUnsupportedOperator(t *testing.T) {
	c, _, calls := newServer(t, http.StatusOK, `{"success": true, "data": []}`)

	_, err := c.List(context.Background(), "reservations", ListParams{
		Filters: []Filter{{Field: "updatedAt", Operator: "gte", Value: "2024-06-01"}},
	})
	require.Error(t, err)
	assert.True(t, reserrors.IsValidation(err))
	assert.Equal(t, int32(0), calls.Load())
}

func TestListFailureUsesServerMessage(t *testing.T) {
	c, _, _ := newServer(t, http.StatusOK, `{"success": false, "error": "database offline"}`)

	_, err := c.List(context.Background(), "reservations", ListParams{})
	remote, ok := reserrors.AsRemote(err)
	require.True(t, ok)
	assert.Equal(t, "database offline", remote.Message)
	assert.Equal(t, reserrors.OpList, remote.Operation)
	assert.Equal(t, "reservations", remote.Resource)
}

func TestFallbackMessages(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		call func(c *Client) error
		want string
	}{
		{"list", func(c *Client) error { _, err := c.List(ctx, "reservations", ListParams{}); return err }, "Error fetching list"},
		{"getOne", func(c *Client) error { _, err := c.GetOne(ctx, "reservations", "a1"); return err }, "Error fetching record"},
		{"create", func(c *Client) error { _, err := c.Create(ctx, "reservations", map[string]any{}); return err }, "Error creating record"},
		{"update", func(c *Client) error { _, err := c.Update(ctx, "reservations", "a1", map[string]any{}); return err }, "Error updating record"},
		{"delete", func(c *Client) error { _, err := c.Delete(ctx, "reservations", "a1"); return err }, "Error deleting record"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newServer(t, http.StatusOK, `{"success": false}`)
			err := tt.call(c)
			remote, ok := reserrors.AsRemote(err)
			require.True(t, ok, "expected RemoteOperationError, got %v", err)
			assert.Equal(t, tt.want, remote.Message)
		})
	}
}

func TestNon2xxAndUndecodableBodies(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantCode int
	}{
		{"server error with message", http.StatusInternalServerError, `{"success": false, "error": "boom"}`, "boom", 500},
		{"not found html", http.StatusNotFound, `<html>not found</html>`, "Error fetching record", 404},
		{"ok but garbage", http.StatusOK, `not json`, "Error fetching record", 200},
		{"ok without success", http.StatusOK, `{"data": {"_id": "a1"}}`, "Error fetching record", 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newServer(t, tt.status, tt.body)
			_, err := c.GetOne(context.Background(), "reservations", "a1")
			remote, ok := reserrors.AsRemote(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, remote.Message)
			assert.Equal(t, tt.wantCode, remote.StatusCode)
		})
	}
}

func TestUnauthorized(t *testing.T) {
	var forced atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"success": false, "error": "Unauthorized"}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithUnauthorizedHandler(func() { forced.Add(1) }))
	require.NoError(t, err)

	_, err = c.Update(context.Background(), "reservations", "a1", map[string]string{"status": "Ready"})
	require.Error(t, err)
	assert.True(t, reserrors.IsAuthentication(err))
	_, isRemote := reserrors.AsRemote(err)
	assert.False(t, isRemote)
	assert.Equal(t, int32(1), forced.Load())
}

func TestUpdateSendsPayload(t *testing.T) {
	c, got, _ := newServer(t, http.StatusOK, `{"success": true, "data": {"_id": "a1", "status": "Ready"}}`)

	rec, err := c.Update(context.Background(), "reservations", "a1", map[string]string{"status": "Ready"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, got.method)
	assert.JSONEq(t, `{"status": "Ready"}`, string(got.body))
	assert.Equal(t, "a1", rec.ID())
	assert.Equal(t, "Ready", rec["status"])
}

func TestCreateAndDelete(t *testing.T) {
	c, got, _ := newServer(t, http.StatusOK, `{"success": true, "data": {"_id": "n1", "name": "Hoa"}}`)

	rec, err := c.Create(context.Background(), "reservations", map[string]string{"name": "Hoa"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/reservations", got.path)
	assert.Equal(t, "n1", rec.ID())

	rec, err = c.Delete(context.Background(), "reservations", "n1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, got.method)
	assert.Equal(t, "/reservations/n1", got.path)
	assert.Equal(t, "n1", rec.ID())
}

func TestMissingArgumentsFailBeforeCall(t *testing.T) {
	c, _, calls := newServer(t, http.StatusOK, `{"success": true}`)
	ctx := context.Background()

	_, err := c.GetOne(ctx, "reservations", "")
	assert.True(t, reserrors.IsValidation(err))

	_, err = c.Update(ctx, "reservations", "a1", nil)
	assert.True(t, reserrors.IsValidation(err))

	_, err = c.Update(ctx, "", "a1", map[string]string{})
	assert.True(t, reserrors.IsValidation(err))

	_, err = c.Create(ctx, "reservations", nil)
	assert.True(t, reserrors.IsValidation(err))

	_, err = c.Delete(ctx, "reservations", " ")
	assert.True(t, reserrors.IsValidation(err))

	assert.Equal(t, int32(0), calls.Load())
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.List(context.Background(), "reservations", ListParams{})
	remote, ok := reserrors.AsRemote(err)
	require.True(t, ok)
	assert.Equal(t, "Error fetching list", remote.Message)
	assert.Equal(t, 0, remote.StatusCode)
	assert.NotNil(t, remote.Unwrap())
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)
}

func TestRateLimitHonorsContext(t *testing.T) {
	c, _, calls := newServer(t, http.StatusOK, `{"success": true, "data": []}`)
	WithRateLimit(0.001, 1)(c)

	_, err := c.List(context.Background(), "reservations", ListParams{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.List(ctx, "reservations", ListParams{})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDecode(t *testing.T) {
	type row struct {
		ID    string `json:"id"`
		Count int    `json:"guestCount"`
	}
	got, err := Decode[row](Record{"id": "a1", "guestCount": json.Number("3")})
	require.NoError(t, err)
	assert.Equal(t, row{ID: "a1", Count: 3}, got)
}

func TestPing(t *testing.T) {
	c, got, _ := newServer(t, http.StatusNotFound, `{}`)

	status, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, http.MethodGet, got.method)

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	down, err := New(url)
	require.NoError(t, err)
	_, err = down.Ping(context.Background())
	assert.Error(t, err)
}
