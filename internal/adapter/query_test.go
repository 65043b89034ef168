package adapter

import (
	"testing"

	reserrors "github.com/julianstephens/resdesk/internal/errors"
)

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name    string
		params  ListParams
		want    string
		wantErr bool
	}{
		{
			name: "defaults",
			want: "sort=-updatedAt",
		},
		{
			name:   "pagination",
			params: ListParams{Pagination: Pagination{Page: 1, PageSize: 20}},
			want:   "limit=20&page=1&sort=-updatedAt",
		},
		{
			name:   "ascending sorter",
			params: ListParams{Sorters: []Sorter{{Field: "name", Order: Asc}}},
			want:   "sort=name",
		},
		{
			name:   "multi sort",
			params: ListParams{Sorters: []Sorter{{Field: "status"}, {Field: "createdAt", Order: Desc}}},
			want:   "sort=status%2C-createdAt",
		},
		{
			name:   "equality filter with implicit operator",
			params: ListParams{Filters: []Filter{{Field: "status", Value: "Ready"}}},
			want:   "sort=-updatedAt&status=Ready",
		},
		{
			name:    "range operator",
			params:  ListParams{Filters: []Filter{{Field: "createdAt", Operator: "gte", Value: "x"}}},
			wantErr: true,
		},
		{
			name:    "reserved key",
			params:  ListParams{Filters: []Filter{Eq("sort", "name")}},
			wantErr: true,
		},
		{
			name:    "unknown order",
			params:  ListParams{Sorters: []Sorter{{Field: "name", Order: "up"}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := BuildListQuery(tt.params)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BuildListQuery() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !reserrors.IsValidation(err) {
					t.Errorf("BuildListQuery() error = %T, want ValidationError", err)
				}
				return
			}
			if got := q.Encode(); got != tt.want {
				t.Errorf("BuildListQuery().Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}
