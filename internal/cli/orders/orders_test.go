package orders

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/resdesk/internal/adapter"
	"github.com/julianstephens/resdesk/internal/auth"
	"github.com/julianstephens/resdesk/internal/cli"
	"github.com/julianstephens/resdesk/internal/keyring"
	"github.com/julianstephens/resdesk/internal/reservations"
)

// fakeAPI serves a single reservation record
type fakeAPI struct {
	mu     sync.Mutex
	record map[string]any
	puts   int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/reservations":
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": []any{f.record}, "total": 1})
	case r.Method == http.MethodGet && r.URL.Path == "/reservations/r1":
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": f.record})
	case r.Method == http.MethodPut && r.URL.Path == "/reservations/r1":
		f.puts++
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		for k, v := range body {
			f.record[k] = v
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": f.record})
	default:
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "not found"})
	}
}

func setup(t *testing.T, status string, loggedIn bool) (*cli.Context, *fakeAPI, *bytes.Buffer) {
	t.Helper()
	gokeyring.MockInit()

	api := &fakeAPI{record: map[string]any{
		"_id":         "r1",
		"orderNumber": 7,
		"name":        "Minh",
		"phone":       "0900",
		"guestCount":  3,
		"date":        "2025-06-02",
		"hour":        "19",
		"minute":      "0",
		"status":      status,
		"createdAt":   "2025-06-01T08:00:00Z",
		"updatedAt":   "2025-06-01T09:00:00Z",
	}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := adapter.New(srv.URL)
	require.NoError(t, err)

	if loggedIn {
		require.NoError(t, keyring.SetSession(srv.URL, keyring.Session{
			Username: "admin",
			Cookies:  []keyring.Cookie{{Name: "sid", Value: "abc", Path: "/"}},
		}))
	} else {
		_ = keyring.DeleteSession(srv.URL)
	}

	out := &bytes.Buffer{}
	return &cli.Context{
		Config:       cli.Config{APIURL: srv.URL, Location: time.UTC},
		Client:       client,
		Auth:         auth.NewService(client, keyring.Store{}),
		Reservations: reservations.NewService(client),
		Out:          out,
	}, api, out
}

func TestListCmd(t *testing.T) {
	ctx, _, out := setup(t, "Pending", true)

	require.NoError(t, (&ListCmd{Page: 1, PageSize: 10, ShowIDs: true}).Run(ctx))
	assert.Contains(t, out.String(), "page 1 of 1, 1 total")
	assert.Contains(t, out.String(), "#7")
	assert.Contains(t, out.String(), "(ID: r1)")
	assert.Contains(t, out.String(), "2025-06-02 19:00")
}

func TestListCmdRejectsUnknownStatus(t *testing.T) {
	ctx, _, _ := setup(t, "Pending", true)
	assert.Error(t, (&ListCmd{Page: 1, PageSize: 10, Status: "Seated"}).Run(ctx))
}

func TestAcceptCmd(t *testing.T) {
	ctx, api, out := setup(t, "Pending", true)

	require.NoError(t, (&AcceptCmd{ID: "r1"}).Run(ctx))
	assert.Equal(t, "Reservation #7: Pending -> Ready\n", out.String())
	assert.Equal(t, 1, api.puts)
}

func TestDisallowedTransitionNeverReachesAPI(t *testing.T) {
	ctx, api, _ := setup(t, "Cancelled", true)

	err := (&RejectCmd{ID: "r1"}).Run(ctx)
	require.Error(t, err)
	assert.Equal(t, 0, api.puts)
}

func TestRequiresSession(t *testing.T) {
	ctx, _, _ := setup(t, "Pending", false)
	assert.ErrorIs(t, (&ShowCmd{ID: "r1"}).Run(ctx), cli.ErrNotLoggedIn)
}

func TestParseSort(t *testing.T) {
	assert.Nil(t, ParseSort(""))
	assert.Equal(t, []adapter.Sorter{{Field: "createdAt", Order: adapter.Desc}}, ParseSort("-createdAt"))
	assert.Equal(t, []adapter.Sorter{{Field: "name", Order: adapter.Asc}}, ParseSort(" name "))
}

func TestShowCmd(t *testing.T) {
	ctx, _, out := setup(t, "Ready", true)

	require.NoError(t, (&ShowCmd{ID: "r1"}).Run(ctx))
	assert.Contains(t, out.String(), "Reservation #7 (ID: r1)")
	assert.Contains(t, out.String(), "Minh")
}
