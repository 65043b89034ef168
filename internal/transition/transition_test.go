package transition

import (
	"testing"

	reserrors "github.com/julianstephens/resdesk/internal/errors"
	"github.com/julianstephens/resdesk/internal/models"
)

func TestAllowedTransitions(t *testing.T) {
	tests := []struct {
		from models.Status
		want []models.Status
	}{
		{models.StatusPending, []models.Status{models.StatusReady, models.StatusCancelled}},
		{models.StatusReady, []models.Status{models.StatusCancelled, models.StatusPending}},
		{models.StatusCancelled, []models.Status{models.StatusReady, models.StatusPending}},
		{models.Status("Seated"), []models.Status{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			got := AllowedTransitions(tt.from)
			if len(got) != len(tt.want) {
				t.Fatalf("AllowedTransitions(%s) = %v, want %v", tt.from, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("AllowedTransitions(%s)[%d] = %s, want %s", tt.from, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAllowedTransitionsReturnsCopy(t *testing.T) {
	got := AllowedTransitions(models.StatusPending)
	got[0] = models.StatusPending

	if CanTransition(models.StatusPending, models.StatusPending) {
		t.Error("mutating the returned slice changed the policy table")
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		from    models.Status
		to      models.Status
		wantErr bool
	}{
		{"pending to ready", models.StatusPending, models.StatusReady, false},
		{"pending to cancelled", models.StatusPending, models.StatusCancelled, false},
		{"pending to pending", models.StatusPending, models.StatusPending, true},
		{"ready to cancelled", models.StatusReady, models.StatusCancelled, false},
		{"ready to pending", models.StatusReady, models.StatusPending, false},
		{"ready to ready", models.StatusReady, models.StatusReady, true},
		{"cancelled to ready", models.StatusCancelled, models.StatusReady, false},
		{"cancelled to pending", models.StatusCancelled, models.StatusPending, false},
		{"cancelled to cancelled", models.StatusCancelled, models.StatusCancelled, true},
		{"unknown target", models.StatusPending, models.Status("Seated"), true},
		{"unknown source", models.Status(""), models.StatusReady, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Check(%s, %s) error = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
			}
			if err != nil && !reserrors.IsValidation(err) {
				t.Errorf("Check(%s, %s) returned %T, want ValidationError", tt.from, tt.to, err)
			}
		})
	}
}

func TestEveryStatusReachable(t *testing.T) {
	for _, from := range models.Statuses {
		for _, to := range models.Statuses {
			if from == to {
				continue
			}
			if CanTransition(from, to) {
				continue
			}
			// Not directly reachable: must be reachable through one hop
			reachable := false
			for _, mid := range AllowedTransitions(from) {
				if CanTransition(mid, to) {
					reachable = true
				}
			}
			if !reachable {
				t.Errorf("%s is not reachable from %s", to, from)
			}
		}
	}
}

func TestEnabled(t *testing.T) {
	if !Enabled(ActionAccept, models.StatusCancelled) {
		t.Error("accept should be enabled for a cancelled reservation")
	}
	if Enabled(ActionAccept, models.StatusReady) {
		t.Error("accept should be disabled for a ready reservation")
	}
	if Enabled(ActionPending, models.StatusPending) {
		t.Error("pending should be disabled for a pending reservation")
	}
	if !Enabled(ActionReject, models.StatusReady) {
		t.Error("reject should be enabled for a ready reservation")
	}
	if Enabled(Action("archive"), models.StatusPending) {
		t.Error("unknown actions should never be enabled")
	}
}
