package domain

import "time"

// HistoryEntry is an immutable audit trail entry recorded for every status change.
type HistoryEntry struct {
	ID        string
	TicketID  string
	Status    TicketStatus
	ChangedBy string
	ChangedAt time.Time
	Note      string
}
