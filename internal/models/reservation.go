package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusReady     Status = "Ready"
	StatusCancelled Status = "Cancelled"
)

// Statuses lists every reservation status in display order
var Statuses = []Status{StatusPending, StatusReady, StatusCancelled}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusReady, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus accepts a status name in any letter case
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status: %q (expected Pending, Ready or Cancelled)", s)
}

type Area string

const (
	AreaHanoi     Area = "HÀ NỘI"
	AreaHoChiMinh Area = "TP. HỒ CHÍ MINH"
	AreaHaiPhong  Area = "HẢI PHÒNG"
)

func (a Area) Valid() bool {
	switch a {
	case "", AreaHanoi, AreaHoChiMinh, AreaHaiPhong:
		return true
	}
	return false
}

// TimePart is an hour or minute component. The API sends these either as
// strings ("16", "05") or as bare numbers, so both are accepted.
type TimePart string

func (p *TimePart) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = TimePart(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid time component %s", string(data))
	}
	*p = TimePart(n.String())
	return nil
}

// Padded returns the component left-padded to two digits
func (p TimePart) Padded() string {
	if p == "" {
		return ""
	}
	if n, err := strconv.Atoi(string(p)); err == nil {
		return fmt.Sprintf("%02d", n)
	}
	if len(p) == 1 {
		return "0" + string(p)
	}
	return string(p)
}

// OrderNumber is the human-facing reservation number. It arrives as either
// a JSON string or a number.
type OrderNumber string

func (o *OrderNumber) UnmarshalJSON(data []byte) error {
	var p TimePart
	if err := p.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid order number %s", string(data))
	}
	*o = OrderNumber(p)
	return nil
}

type Reservation struct {
	ID          string      `json:"id"`
	OrderNumber OrderNumber `json:"orderNumber,omitempty"`
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
	Email       string      `json:"email,omitempty"`
	Area        Area        `json:"area,omitempty"`
	Restaurant  string      `json:"restaurant,omitempty"`
	Date        string      `json:"date"`
	Hour        TimePart    `json:"hour"`
	Minute      TimePart    `json:"minute"`
	GuestCount  int         `json:"guestCount"`
	Message     string      `json:"message,omitempty"`
	Status      Status      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Label is the operator-facing display label, e.g. "#1042"
func (r Reservation) Label() string {
	if r.OrderNumber == "" {
		return "#" + r.ID
	}
	return "#" + string(r.OrderNumber)
}

// TimeOfDay renders the reservation time as HH:MM, or "" when unknown
func (r Reservation) TimeOfDay() string {
	if r.Hour == "" || r.Minute == "" {
		return ""
	}
	return r.Hour.Padded() + ":" + r.Minute.Padded()
}

// ReservationTime combines the calendar date and time of day ("2025-06-01 16:30")
func (r Reservation) ReservationTime() string {
	return strings.TrimSpace(r.Date + " " + r.TimeOfDay())
}

// Validate checks the invariants every record coming from the API must hold
func (r Reservation) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("reservation is missing an id")
	}
	if !r.Status.Valid() {
		return fmt.Errorf("reservation %s has invalid status %q", r.ID, r.Status)
	}
	if !r.Area.Valid() {
		return fmt.Errorf("reservation %s has unknown area %q", r.ID, r.Area)
	}
	if r.GuestCount < 0 {
		return fmt.Errorf("reservation %s has negative guest count %d", r.ID, r.GuestCount)
	}
	if !r.CreatedAt.IsZero() && !r.UpdatedAt.IsZero() && r.UpdatedAt.Before(r.CreatedAt) {
		return fmt.Errorf("reservation %s was updated before it was created", r.ID)
	}
	return nil
}
