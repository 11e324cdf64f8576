package model

import "testing"

func TestWithdrawalStatusTransitions(t *testing.T) {
	tests := []struct {
		from WithdrawalStatus
		to   WithdrawalStatus
		want bool
	}{
		{WithdrawalStatusPending, WithdrawalStatusProcessing, true},
		{WithdrawalStatusPending, WithdrawalStatusRejected, true},
		{WithdrawalStatusPending, WithdrawalStatusCompleted, false},
		{WithdrawalStatusPending, WithdrawalStatusApproved, false},
		{WithdrawalStatusProcessing, WithdrawalStatusApproved, true},
		{WithdrawalStatusProcessing, WithdrawalStatusCompleted, true},
		{WithdrawalStatusProcessing, WithdrawalStatusRejected, true},
		{WithdrawalStatusProcessing, WithdrawalStatusPending, false},
		{WithdrawalStatusApproved, WithdrawalStatusCompleted, true},
		{WithdrawalStatusApproved, WithdrawalStatusRejected, false},
		{WithdrawalStatus("BOGUS"), WithdrawalStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for _, from := range []WithdrawalStatus{WithdrawalStatusCompleted, WithdrawalStatusRejected} {
		if !from.IsTerminal() {
			t.Fatalf("expected %s to be terminal", from)
		}
		for _, to := range WithdrawalStatuses() {
			if from.CanTransitionTo(to) {
				t.Fatalf("unexpected transition %s -> %s", from, to)
			}
		}
	}

	if WithdrawalStatusPending.IsTerminal() {
		t.Fatal("PENDING must not be terminal")
	}
	if WithdrawalStatus("BOGUS").IsTerminal() {
		t.Fatal("unknown statuses are not terminal")
	}
}

func TestReservesFunds(t *testing.T) {
	if WithdrawalStatusRejected.ReservesFunds() {
		t.Fatal("rejected withdrawals must release funds")
	}
	for _, s := range []WithdrawalStatus{WithdrawalStatusPending, WithdrawalStatusProcessing, WithdrawalStatusApproved, WithdrawalStatusCompleted} {
		if !s.ReservesFunds() {
			t.Fatalf("expected %s to reserve funds", s)
		}
	}
}

func TestNextStatusesReturnsCopy(t *testing.T) {
	next := WithdrawalStatusPending.NextStatuses()
	next[0] = WithdrawalStatusCompleted

	if WithdrawalStatusPending.CanTransitionTo(WithdrawalStatusCompleted) {
		t.Fatal("mutating NextStatuses must not change the table")
	}
}

func TestNewPaginatedResponse(t *testing.T) {
	resp := NewPaginatedResponse[int](nil, 1, 20, 41)
	if resp.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", resp.TotalPages)
	}
	if resp.Data == nil {
		t.Fatal("expected empty slice, got nil")
	}
}
