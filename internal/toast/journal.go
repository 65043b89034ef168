package toast

import (
	"github.com/google/uuid"

	"github.com/julianstephens/resdesk/internal/models"
)

// Recorder appends notifications to the local journal
type Recorder interface {
	AddNotification(models.Notification) error
}

// Journal records every toast so the operator can review missed ones
type Journal struct {
	store Recorder
}

func NewJournal(store Recorder) *Journal {
	return &Journal{store: store}
}

func (j *Journal) Show(t Toast) error {
	return j.store.AddNotification(models.Notification{
		ID:            uuid.NewString(),
		ReservationID: t.ReservationID,
		OrderNumber:   t.OrderNumber,
		Title:         t.Title,
		Description:   t.Description,
		ReceivedAt:    t.At,
	})
}
