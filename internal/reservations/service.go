// Package reservations is the typed reservation API used by the console
// views and commands. Status changes always pass the transition policy
// before anything is sent.
package reservations

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/resdesk/internal/adapter"
	"github.com/julianstephens/resdesk/internal/constants"
	reserrors "github.com/julianstephens/resdesk/internal/errors"
	"github.com/julianstephens/resdesk/internal/logger"
	"github.com/julianstephens/resdesk/internal/models"
	"github.com/julianstephens/resdesk/internal/transition"
)

// API is the part of the resource adapter the service uses
type API interface {
	List(ctx context.Context, resource string, params adapter.ListParams) (adapter.ListResult, error)
	GetOne(ctx context.Context, resource, id string) (adapter.Record, error)
	Update(ctx context.Context, resource, id string, payload any) (adapter.Record, error)
	Delete(ctx context.Context, resource, id string) (adapter.Record, error)
}

// Query selects a page of reservations
type Query struct {
	Page     int
	PageSize int
	// Status filters by equality when set
	Status  models.Status
	Sorters []adapter.Sorter
}

// Page is one page of reservations plus the server total
type Page struct {
	Items    []models.Reservation
	Total    int
	HasTotal bool
}

type Service struct {
	api      API
	resource string
	log      *log.Logger
}

func NewService(api API) *Service {
	return &Service{
		api:      api,
		resource: constants.ResourceReservations,
		log:      logger.Component("reservations"),
	}
}

// List fetches one page
func (s *Service) List(ctx context.Context, q Query) (Page, error) {
	params := adapter.ListParams{
		Pagination: adapter.Pagination{Page: q.Page, PageSize: q.PageSize},
		Sorters:    q.Sorters,
	}
	if q.Status != "" {
		if !q.Status.Valid() {
			return Page{}, reserrors.NewValidationError("status", "invalid status filter %q", q.Status)
		}
		params.Filters = append(params.Filters, adapter.Eq("status", string(q.Status)))
	}

	res, err := s.api.List(ctx, s.resource, params)
	if err != nil {
		return Page{}, err
	}

	items := make([]models.Reservation, 0, len(res.Records))
	for _, rec := range res.Records {
		r, err := decode(rec)
		if err != nil {
			return Page{}, err
		}
		if err := r.Validate(); err != nil {
			s.log.Warn("API returned an inconsistent reservation", "error", err)
		}
		items = append(items, r)
	}
	return Page{Items: items, Total: res.Total, HasTotal: res.HasTotal}, nil
}

// Recent returns the newest reservations by creation time
func (s *Service) Recent(ctx context.Context, page, size int) (Page, error) {
	return s.List(ctx, Query{
		Page:     page,
		PageSize: size,
		Sorters:  []adapter.Sorter{{Field: constants.CreatedAtSortField, Order: adapter.Desc}},
	})
}

// Collect pages through a query until max items, a short page, or the
// server total (when reported) is reached. q.PageSize is the page size used
// for each request.
func (s *Service) Collect(ctx context.Context, q Query, max int) ([]models.Reservation, error) {
	if q.PageSize <= 0 {
		q.PageSize = constants.ExportPageSize
	}
	var out []models.Reservation
	for page := 1; max <= 0 || len(out) < max; page++ {
		q.Page = page
		p, err := s.List(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Items...)
		if len(p.Items) < q.PageSize || (p.HasTotal && len(out) >= p.Total) {
			break
		}
	}
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out, nil
}

// Get fetches a single reservation
func (s *Service) Get(ctx context.Context, id string) (models.Reservation, error) {
	rec, err := s.api.GetOne(ctx, s.resource, id)
	if err != nil {
		return models.Reservation{}, err
	}
	return decode(rec)
}

// Transition moves current to status to. The policy is checked first; a
// rejected move never reaches the API. On any failure the returned
// reservation is current, unchanged.
func (s *Service) Transition(ctx context.Context, current models.Reservation, to models.Status) (models.Reservation, error) {
	if err := transition.Check(current.Status, to); err != nil {
		return current, err
	}

	rec, err := s.api.Update(ctx, s.resource, current.ID, map[string]string{"status": string(to)})
	if err != nil {
		s.log.Warn("Status update failed", "id", current.ID, "to", to, "error", err)
		return current, err
	}

	updated, err := decode(rec)
	if err != nil {
		return current, err
	}
	if updated.ID == "" {
		// Some endpoints answer with a bare acknowledgement
		updated = current
		updated.Status = to
	}
	s.log.Info("Reservation status changed", "id", current.ID, "from", current.Status, "to", updated.Status)
	return updated, nil
}

// Apply runs an operator action (accept, reject, pending)
func (s *Service) Apply(ctx context.Context, current models.Reservation, action transition.Action) (models.Reservation, error) {
	to, ok := transition.Target(action)
	if !ok {
		return current, fmt.Errorf("unknown action %q", action)
	}
	return s.Transition(ctx, current, to)
}

// Delete removes a reservation
func (s *Service) Delete(ctx context.Context, id string) (models.Reservation, error) {
	rec, err := s.api.Delete(ctx, s.resource, id)
	if err != nil {
		return models.Reservation{}, err
	}
	s.log.Info("Reservation deleted", "id", id)
	if rec == nil {
		return models.Reservation{ID: id}, nil
	}
	return decode(rec)
}

func decode(rec adapter.Record) (models.Reservation, error) {
	if rec == nil {
		return models.Reservation{}, nil
	}
	r, err := adapter.Decode[models.Reservation](rec)
	if err != nil {
		return models.Reservation{}, fmt.Errorf("reservation %s: %w", rec.ID(), err)
	}
	return r, nil
}
