package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

const (
	// DefaultTicketTTL is how long a WebSocket ticket is valid.
	DefaultTicketTTL = 60 * time.Second

	// ticketBytes is the number of random bytes in a ticket.
	ticketBytes = 32
)

// Ticket is the identity a ticket stands in for.
type Ticket struct {
	Subject   string
	Role      Role
	ExpiresAt time.Time
}

// TicketStore holds pending WebSocket tickets. Tickets are single-use.
type TicketStore struct {
	ttl     time.Duration
	now     func() time.Time
	tickets map[string]Ticket
	mu      sync.Mutex
}

// NewTicketStore creates a store whose tickets expire after ttl.
func NewTicketStore(ttl time.Duration) *TicketStore {
	if ttl <= 0 {
		ttl = DefaultTicketTTL
	}
	return &TicketStore{
		ttl:     ttl,
		now:     time.Now,
		tickets: make(map[string]Ticket),
	}
}

// TTL returns the ticket lifetime.
func (s *TicketStore) TTL() time.Duration { return s.ttl }

// Issue creates a ticket for the given identity.
func (s *TicketStore) Issue(subject string, role Role) string {
	ticket := generateTicket()

	s.mu.Lock()
	s.tickets[ticket] = Ticket{
		Subject:   subject,
		Role:      role,
		ExpiresAt: s.now().Add(s.ttl),
	}
	s.mu.Unlock()
	return ticket
}

// Consume checks a ticket and removes it.
func (s *TicketStore) Consume(ticket string) (Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tickets[ticket]
	if !ok {
		return Ticket{}, false
	}
	delete(s.tickets, ticket)

	if !s.now().Before(entry.ExpiresAt) {
		return Ticket{}, false
	}
	return entry, true
}

// Len returns the number of outstanding tickets.
func (s *TicketStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickets)
}

// Clean removes expired tickets.
func (s *TicketStore) Clean() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for ticket, entry := range s.tickets {
		if !now.Before(entry.ExpiresAt) {
			delete(s.tickets, ticket)
		}
	}
}

// Run calls Clean every TTL until ctx is cancelled.
func (s *TicketStore) Run(ctx context.Context) {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Clean()
		}
	}
}

func generateTicket() string {
	b := make([]byte, ticketBytes)
	//nolint:errcheck // crypto/rand.Read always returns len(b) on supported platforms
	rand.Read(b)
	return hex.EncodeToString(b)
}
