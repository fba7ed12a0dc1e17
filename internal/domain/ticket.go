package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusWaiting    TicketStatus = "waiting"
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
)

// ValidTicketStatus reports whether s is one of the four lifecycle states.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusWaiting, TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved:
		return true
	}
	return false
}

// TicketPriority enumerates urgency. "waiting" is system-assigned only and
// cannot be set through a priority update.
type TicketPriority string

const (
	TicketPriorityWaiting TicketPriority = "waiting"
	TicketPriorityLow     TicketPriority = "low"
	TicketPriorityMedium  TicketPriority = "medium"
	TicketPriorityHigh    TicketPriority = "high"
)

// SettableTicketPriority reports whether p may be set via a priority update.
func SettableTicketPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. TicketNumber is the public
// display identifier, distinct from the row id. AssignedToID is a weak
// reference: deleting the user leaves it dangling.
type Ticket struct {
	ID             string
	TicketNumber   int64
	Title          string
	Description    string
	Sector         string
	ProblemType    string
	Priority       TicketPriority
	Status         TicketStatus
	RequesterName  string
	RequesterEmail string
	AssignedToID   *string
	AcceptedAt     *time.Time
	ResolvedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Attachments    []string
}

// TicketWithDetails bundles a ticket with its comment thread and, when
// assigned, the technician record.
type TicketWithDetails struct {
	Ticket
	AssignedTo *User
	Comments   []Comment
}
