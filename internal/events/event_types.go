package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketUnassigned      EventType = "ticket_unassigned"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventCommentAdded          EventType = "comment_added"
)

// AllTypes lists every event type, for subscribers that react to any ticket
// mutation (report cache invalidation).
func AllTypes() []EventType {
	return []EventType{
		EventTicketCreated,
		EventTicketAssigned,
		EventTicketUnassigned,
		EventTicketStatusChanged,
		EventTicketPriorityChanged,
		EventCommentAdded,
	}
}

// Event represents a domain event emitted after a lifecycle transition has
// committed to the store. Handlers run best-effort: their failure never rolls
// back the transition.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     string      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Ticket domain.Ticket `json:"ticket"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	Ticket     domain.Ticket `json:"ticket"`
	Technician domain.User   `json:"technician"`
}

// TicketUnassignedPayload payload.
type TicketUnassignedPayload struct {
	Ticket domain.Ticket `json:"ticket"`
}

// TicketStatusChangedPayload payload. ChangedBy is the acting staff member's
// display name, shown to the requester when the change resolves the ticket.
type TicketStatusChangedPayload struct {
	Ticket    domain.Ticket       `json:"ticket"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	ChangedBy string              `json:"changed_by"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	Ticket      domain.Ticket         `json:"ticket"`
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
	UpdatedBy   string                `json:"updated_by"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	Ticket     domain.Ticket            `json:"ticket"`
	AuthorName string                   `json:"author_name"`
	AuthorType domain.CommentAuthorType `json:"author_type"`
	ActorRole  domain.ActorRole         `json:"actor_role"`
}
