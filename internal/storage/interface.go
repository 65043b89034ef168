package storage

import "github.com/julianstephens/resdesk/internal/models"

// Provider is the local notification journal
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Notifications
	AddNotification(models.Notification) error
	GetRecentNotifications(limit int) ([]models.Notification, error)
	MarkAllRead() (int, error)
	CountUnread() (int, error)
	ClearNotifications() (int, error)

	// SchemaStatus reports the applied and the newest known schema version
	SchemaStatus() (current, latest int, err error)

	// Utils
	GetConfigPath() string
}
