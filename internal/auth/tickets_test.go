package auth

import (
	"testing"
	"time"
)

func TestTicketStore_IssueConsume(t *testing.T) {
	s := NewTicketStore(time.Minute)

	ticket := s.Issue("hall-panel", RolePanel)
	if len(ticket) != ticketBytes*2 {
		t.Errorf("ticket length = %d, want %d hex chars", len(ticket), ticketBytes*2)
	}

	got, ok := s.Consume(ticket)
	if !ok {
		t.Fatal("Consume() of fresh ticket failed")
	}
	if got.Subject != "hall-panel" || got.Role != RolePanel {
		t.Errorf("Consume() = %+v", got)
	}

	if _, ok := s.Consume(ticket); ok {
		t.Error("ticket should be single-use")
	}
	if _, ok := s.Consume("unknown"); ok {
		t.Error("unknown ticket should be rejected")
	}
}

func TestTicketStore_Expiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewTicketStore(time.Minute)
	s.now = func() time.Time { return now }

	stale := s.Issue("a", RoleViewer)
	fresh := s.Issue("b", RoleViewer)

	now = now.Add(time.Minute)
	if _, ok := s.Consume(stale); ok {
		t.Error("ticket at its expiry instant should be rejected")
	}

	now = now.Add(-30 * time.Second)
	s.tickets[fresh] = Ticket{Subject: "b", Role: RoleViewer, ExpiresAt: now.Add(time.Second)}
	s.Issue("c", RoleViewer)
	now = now.Add(2 * time.Second)
	s.Clean()
	if s.Len() != 1 {
		t.Errorf("Len() after Clean = %d, want 1", s.Len())
	}
}

func TestNewTicketStore_DefaultTTL(t *testing.T) {
	if got := NewTicketStore(0).TTL(); got != DefaultTicketTTL {
		t.Errorf("TTL() = %v, want %v", got, DefaultTicketTTL)
	}
}
