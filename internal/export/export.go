// Package export writes reservations as CSV or JSON for offline use
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/resdesk/internal/models"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json" in any letter case
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported export format %q (expected csv or json)", s)
}

// Columns is the export header, in order
var Columns = []string{
	"id",
	"orderNumber",
	"status",
	"name",
	"phone",
	"email",
	"area",
	"restaurant",
	"reservationTime",
	"guestCount",
	"message",
	"createdAt",
	"updatedAt",
}

// Row flattens one reservation into the Columns order
type Row struct {
	ID              string `json:"id"`
	OrderNumber     string `json:"orderNumber"`
	Status          string `json:"status"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Area            string `json:"area"`
	Restaurant      string `json:"restaurant"`
	ReservationTime string `json:"reservationTime"`
	GuestCount      int    `json:"guestCount"`
	Message         string `json:"message"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

func NewRow(r models.Reservation) Row {
	return Row{
		ID:              r.ID,
		OrderNumber:     string(r.OrderNumber),
		Status:          string(r.Status),
		Name:            r.Name,
		Phone:           r.Phone,
		Email:           r.Email,
		Area:            string(r.Area),
		Restaurant:      r.Restaurant,
		ReservationTime: r.ReservationTime(),
		GuestCount:      r.GuestCount,
		Message:         r.Message,
		CreatedAt:       timestamp(r.CreatedAt),
		UpdatedAt:       timestamp(r.UpdatedAt),
	}
}

func (r Row) record() []string {
	return []string{
		r.ID,
		r.OrderNumber,
		r.Status,
		r.Name,
		r.Phone,
		r.Email,
		r.Area,
		r.Restaurant,
		r.ReservationTime,
		strconv.Itoa(r.GuestCount),
		r.Message,
		r.CreatedAt,
		r.UpdatedAt,
	}
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Write encodes items in the given format
func Write(w io.Writer, format Format, items []models.Reservation) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, items)
	case FormatJSON:
		return writeJSON(w, items)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

func writeCSV(w io.Writer, items []models.Reservation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, item := range items {
		if err := cw.Write(NewRow(item).record()); err != nil {
			return fmt.Errorf("failed to write reservation %s: %w", item.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, items []models.Reservation) error {
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, NewRow(item))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
