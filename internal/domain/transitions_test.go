package domain

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to TicketStatus
		want     bool
	}{
		{TicketStatusDraft, TicketStatusSent, true},
		{TicketStatusDraft, TicketStatusDone, false},
		{TicketStatusSent, TicketStatusPending, true},
		{TicketStatusPending, TicketStatusRejected, true},
		{TicketStatusInProgress, TicketStatusDone, true},
		{TicketStatusInProgress, TicketStatusAccepted, false},
		{TicketStatusExternalService, TicketStatusInProgress, true},
		{TicketStatusDone, TicketStatusClosed, true},
		{TicketStatusDone, TicketStatusInProgress, false},
		{TicketStatusCancelled, TicketStatusDraft, false},
		{TicketStatusRejected, TicketStatusSent, false},
		{TicketStatus("Archived"), TicketStatusSent, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminalStatusesHaveNoExitExceptDone(t *testing.T) {
	for _, s := range AllTicketStatuses {
		if !s.Terminal() {
			continue
		}
		for _, next := range AllTicketStatuses {
			if CanTransition(s, next) && !(s == TicketStatusDone && next == TicketStatusClosed) {
				t.Errorf("terminal %q allows %q", s, next)
			}
		}
	}
}

func TestDeriveSideEffects(t *testing.T) {
	tests := []struct {
		status     TicketStatus
		asset      AssetStatus
		assignment AssignmentStatus
	}{
		{TicketStatusDraft, AssetStatusRequestMaintenance, AssignmentStatusMaintenance},
		{TicketStatusSent, AssetStatusRequestMaintenance, AssignmentStatusMaintenance},
		{TicketStatusAccepted, AssetStatusMaintenance, AssignmentStatusMaintenance},
		{TicketStatusEscalated, AssetStatusMaintenance, AssignmentStatusMaintenance},
		{TicketStatusPending, AssetStatusMaintenance, AssignmentStatusMaintenance},
		{TicketStatusInProgress, AssetStatusMaintenance, AssignmentStatusMaintenance},
		{TicketStatusExternalService, AssetStatusMaintenance, AssignmentStatusMaintenance},
		{TicketStatusDone, AssetStatusActive, AssignmentStatusAssigned},
		{TicketStatusClosed, AssetStatusActive, AssignmentStatusAssigned},
		{TicketStatusRejected, AssetStatusActive, AssignmentStatusAssigned},
		{TicketStatusCancelled, AssetStatusActive, AssignmentStatusAssigned},
	}
	for _, tt := range tests {
		got := DeriveSideEffects(tt.status)
		if got.AssetStatus != tt.asset || got.AssignmentStatus != tt.assignment {
			t.Errorf("DeriveSideEffects(%q) = %+v, want %s/%s", tt.status, got, tt.asset, tt.assignment)
		}
	}
}

func TestAssignmentOpposite(t *testing.T) {
	if got := AssignmentStatusMaintenance.Opposite(); got != AssignmentStatusAssigned {
		t.Errorf("maintenance.Opposite() = %q", got)
	}
	if got := AssignmentStatusAssigned.Opposite(); got != AssignmentStatusMaintenance {
		t.Errorf("assigned.Opposite() = %q", got)
	}
	if got := AssignmentStatusReturned.Opposite(); got != "" {
		t.Errorf("returned.Opposite() = %q, want empty", got)
	}
}

func TestTicketCloneIsDeep(t *testing.T) {
	tech := "u-1"
	orig := &Ticket{
		ID:           "t-1",
		TechnicianID: &tech,
		SuppliesUsed: []SupplyLine{{ID: "l-1", Quantity: 2, UnitCost: 50}},
		AfterPhotos:  []string{"a.jpg"},
	}
	cp := orig.Clone()
	*cp.TechnicianID = "u-2"
	cp.SuppliesUsed[0].Quantity = 9
	cp.AfterPhotos[0] = "b.jpg"

	if *orig.TechnicianID != "u-1" || orig.SuppliesUsed[0].Quantity != 2 || orig.AfterPhotos[0] != "a.jpg" {
		t.Errorf("Clone() shares state with original: %+v", orig)
	}
	if orig.SuppliesCost() != 100 {
		t.Errorf("SuppliesCost() = %d, want 100", orig.SuppliesCost())
	}
}
