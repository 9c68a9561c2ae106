package task

import (
	"testing"
)

func intptr(n int) *int { return &n }

func TestUpdateRequestResolve(t *testing.T) {
	tests := []struct {
		name         string
		req          UpdateTaskRequest
		wantStatus   string
		wantPriority int
	}{
		{
			name:         "empty_payload_gets_defaults",
			req:          UpdateTaskRequest{Title: "x"},
			wantStatus:   StatusPending,
			wantPriority: DefaultPriority,
		},
		{
			name:         "explicit_values_kept",
			req:          UpdateTaskRequest{Title: "x", Status: StatusDone, Priority: intptr(5)},
			wantStatus:   StatusDone,
			wantPriority: 5,
		},
		{
			name:         "priority_one_is_not_a_zero_value",
			req:          UpdateTaskRequest{Title: "x", Priority: intptr(1)},
			wantStatus:   StatusPending,
			wantPriority: 1,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			status, priority := tt.req.Resolve()

			if status != tt.wantStatus {
				t.Errorf("got status %q, want %q", status, tt.wantStatus)
			}
			if priority != tt.wantPriority {
				t.Errorf("got priority %d, want %d", priority, tt.wantPriority)
			}
		})
	}
}

func TestApplyUpdateUsesResolvedDefaults(t *testing.T) {
	orig := Task{ID: "id", Title: "old", Status: StatusDone, Priority: 5, OwnerID: "owner"}

	got := orig.ApplyUpdate(UpdateTaskRequest{Title: "new"})

	if got.Status != StatusPending {
		t.Errorf("got status %q, want %q", got.Status, StatusPending)
	}
	if got.Priority != DefaultPriority {
		t.Errorf("got priority %d, want %d", got.Priority, DefaultPriority)
	}
	if got.OwnerID != "owner" {
		t.Errorf("owner changed: %q", got.OwnerID)
	}
}
