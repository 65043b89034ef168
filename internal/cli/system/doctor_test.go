package system

import (
	"bytes"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/resdesk/internal/adapter"
	"github.com/julianstephens/resdesk/internal/auth"
	"github.com/julianstephens/resdesk/internal/backup"
	"github.com/julianstephens/resdesk/internal/cli"
	"github.com/julianstephens/resdesk/internal/eventbus"
	"github.com/julianstephens/resdesk/internal/keyring"
	"github.com/julianstephens/resdesk/internal/reservations"
	"github.com/julianstephens/resdesk/internal/storage"
)

func setupTestContext(t *testing.T) (*cli.Context, *httptest.Server, *bytes.Buffer) {
	t.Helper()
	gokeyring.MockInit()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	client, err := adapter.New(srv.URL)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	dbPath := filepath.Join(t.TempDir(), "resdesk.db")
	store := storage.NewSQLiteStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Config: cli.Config{
			APIURL:   srv.URL,
			Journal:  dbPath,
			Location: time.UTC,
		},
		Client:       client,
		Auth:         auth.NewService(client, keyring.Store{}),
		Reservations: reservations.NewService(client),
		Store:        store,
		Bus:          eventbus.New(),
		Out:          out,
	}
	return ctx, srv, out
}

func TestDoctorCmd_Healthy(t *testing.T) {
	ctx, _, out := setupTestContext(t)

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor failed on a healthy setup: %v\n%s", err, out)
	}
	for _, want := range []string{
		"✓ API reachable: OK",
		"⚠ Session: WARNING",
		"✓ Journal schema: OK",
		"⚠ Backups present: WARNING",
		"⊘ Real-time channel: SKIPPED",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDoctorCmd_WithBackups(t *testing.T) {
	ctx, _, out := setupTestContext(t)

	if _, err := backup.NewManager(ctx.Store.GetConfigPath()).CreateBackup(); err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor failed with backups present: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Backups present: OK") {
		t.Errorf("backups not detected:\n%s", out)
	}
}

func TestDoctorCmd_APIDown(t *testing.T) {
	ctx, srv, out := setupTestContext(t)
	srv.Close()

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Fatal("doctor should fail when the API is unreachable")
	}
	if !strings.Contains(out.String(), "❌ API reachable: FAIL") {
		t.Errorf("missing API failure:\n%s", out)
	}
	if !strings.Contains(out.String(), "⊘ Session: SKIPPED") {
		t.Errorf("session check should be skipped:\n%s", out)
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	ctx, _, out := setupTestContext(t)

	db, err := sql.Open("sqlite", ctx.Store.GetConfigPath())
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatalf("failed to insert schema version: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Fatal("doctor should fail with a newer schema")
	}
	if !strings.Contains(out.String(), "❌ Journal schema: FAIL") {
		t.Errorf("missing schema failure:\n%s", out)
	}
}

func TestInitCmd_Force(t *testing.T) {
	ctx, _, out := setupTestContext(t)

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted existing journal") {
		t.Errorf("expected the old journal to be deleted:\n%s", out)
	}
	if _, err := ctx.Store.CountUnread(); err != nil {
		t.Errorf("journal should be usable after init: %v", err)
	}
}

func TestInitCmd_ForceRejectsPostgres(t *testing.T) {
	ctx, _, _ := setupTestContext(t)
	ctx.Config.Journal = "postgres://localhost/resdesk"

	if err := (&InitCmd{Force: true}).Run(ctx); err == nil {
		t.Fatal("init --force should refuse a PostgreSQL journal")
	}
}
