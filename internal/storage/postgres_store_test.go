package storage

import (
	"os"
	"testing"

	"github.com/julianstephens/resdesk/internal/models"
)

// Set RESDESK_POSTGRES_TEST_URL (without a password) to run
func TestPostgresJournal(t *testing.T) {
	connStr := os.Getenv("RESDESK_POSTGRES_TEST_URL")
	if connStr == "" || testing.Short() {
		t.Skip("RESDESK_POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	store := NewPostgresStore(connStr)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer store.Close()
	defer store.ClearNotifications()

	if err := store.AddNotification(models.Notification{Title: "New Reservation", OrderNumber: "1001"}); err != nil {
		t.Fatalf("AddNotification failed: %v", err)
	}
	unread, err := store.CountUnread()
	if err != nil || unread < 1 {
		t.Fatalf("CountUnread = %d, %v", unread, err)
	}
	if _, err := store.MarkAllRead(); err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	items, err := store.GetRecentNotifications(1)
	if err != nil || len(items) != 1 || !items[0].Read {
		t.Fatalf("GetRecentNotifications = %v, %v", items, err)
	}
}

func TestValidateConnString(t *testing.T) {
	tests := []struct {
		name    string
		conn    string
		wantErr bool
	}{
		{"valid", "postgres://resdesk@localhost:5432/resdesk", false},
		{"empty", "", true},
		{"password", "postgres://resdesk:pw@localhost/resdesk", true},
		{"no host", "postgres:///resdesk", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConnString(tt.conn)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConnString(%q) error = %v, wantErr %v", tt.conn, err, tt.wantErr)
			}
		})
	}
}
