package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/resdesk/internal/migration"
	"github.com/julianstephens/resdesk/internal/models"
)

// receivedAtLayout is fixed-width so text ordering matches time ordering
const receivedAtLayout = "2006-01-02T15:04:05.000000000Z"

// journal holds the notification queries shared by both databases
type journal struct {
	db     *sql.DB
	driver migration.Driver
}

// rebind rewrites ? placeholders to $n for postgres
func (j *journal) rebind(query string) string {
	if j.driver != migration.DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (j *journal) ready() error {
	if j.db == nil {
		return fmt.Errorf("journal not loaded")
	}
	return nil
}

func (j *journal) AddNotification(n models.Notification) error {
	if err := j.ready(); err != nil {
		return err
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.ReceivedAt.IsZero() {
		n.ReceivedAt = time.Now()
	}
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("notification title is required")
	}

	_, err := j.db.Exec(j.rebind(`
		INSERT INTO notifications (id, reservation_id, order_number, title, description, received_at, is_read)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`),
		n.ID, n.ReservationID, n.OrderNumber, n.Title, n.Description,
		n.ReceivedAt.UTC().Format(receivedAtLayout), n.Read,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// GetRecentNotifications returns up to limit notifications, newest first.
// limit <= 0 returns all of them.
func (j *journal) GetRecentNotifications(limit int) ([]models.Notification, error) {
	if err := j.ready(); err != nil {
		return nil, err
	}

	query := `
		SELECT id, reservation_id, order_number, title, description, received_at, is_read
		FROM notifications
		ORDER BY received_at DESC, id
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.Query(j.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		var receivedAt string
		if err := rows.Scan(&n.ID, &n.ReservationID, &n.OrderNumber, &n.Title, &n.Description, &receivedAt, &n.Read); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		t, err := time.Parse(receivedAtLayout, receivedAt)
		if err != nil {
			return nil, fmt.Errorf("notification %s has invalid timestamp %q: %w", n.ID, receivedAt, err)
		}
		n.ReceivedAt = t
		out = append(out, n)
	}
	return out, rows.Err()
}

func (j *journal) MarkAllRead() (int, error) {
	if err := j.ready(); err != nil {
		return 0, err
	}
	res, err := j.db.Exec(j.rebind("UPDATE notifications SET is_read = ? WHERE is_read = ?"), true, false)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (j *journal) CountUnread() (int, error) {
	if err := j.ready(); err != nil {
		return 0, err
	}
	var n int
	if err := j.db.QueryRow(j.rebind("SELECT COUNT(*) FROM notifications WHERE is_read = ?"), false).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

func (j *journal) ClearNotifications() (int, error) {
	if err := j.ready(); err != nil {
		return 0, err
	}
	res, err := j.db.Exec("DELETE FROM notifications")
	if err != nil {
		return 0, fmt.Errorf("failed to clear notifications: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
