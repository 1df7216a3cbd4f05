package domain

import "time"

// Note is user-facing commentary on a ticket. Notes are separate from the
// audit trail and may be edited or deleted.
type Note struct {
	ID        string
	TicketID  string
	Content   string
	AddedBy   string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
