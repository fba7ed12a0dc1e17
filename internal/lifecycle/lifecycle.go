// Package lifecycle holds the pure decision logic for ticket state
// transitions, assignment, and comment permissions. It performs no I/O: the
// service layer reads the ticket, consults these checks, applies the change
// set, and writes back.
package lifecycle

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusWaiting:    {domain.TicketStatusOpen, domain.TicketStatusInProgress},
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusResolved},
	domain.TicketStatusInProgress: {domain.TicketStatusResolved},
	domain.TicketStatusResolved:   {},
}

func transitionAllowed(current, next domain.TicketStatus) bool {
	if current == next {
		return true
	}
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// CheckStatusChange validates a requested status transition. Resolved is
// terminal for non-admin actors; admins may move a resolved ticket back to any
// status.
func CheckStatusChange(current, next domain.TicketStatus, actor domain.ActorRole) error {
	if !domain.ValidTicketStatus(next) {
		return apperrors.NewInvalidArgument("invalid status", map[string]any{"status": next})
	}
	if actor == domain.ActorRoleAdmin {
		return nil
	}
	if current == domain.TicketStatusResolved && next != domain.TicketStatusResolved {
		return apperrors.NewForbidden("only admins can modify resolved tickets")
	}
	if !transitionAllowed(current, next) {
		return apperrors.NewForbidden("status transition not allowed")
	}
	return nil
}

// CheckPriorityChange validates a requested priority. The system-only
// "waiting" priority is rejected. Resolved tickets carry no extra guard here,
// matching the reference behavior.
func CheckPriorityChange(next domain.TicketPriority) error {
	if !domain.SettableTicketPriority(next) {
		return apperrors.NewInvalidArgument("invalid priority", map[string]any{"priority": next})
	}
	return nil
}

// CheckAssign validates assigning a ticket. Reassignment of an already
// assigned ticket is permitted (technician hand-off); the store-level
// compare-and-swap closes the concurrent race. Resolved tickets may only be
// reassigned by admins.
func CheckAssign(ticket *domain.Ticket, actor domain.ActorRole) error {
	if ticket.Status == domain.TicketStatusResolved && actor != domain.ActorRoleAdmin {
		return apperrors.NewForbidden("only admins can modify resolved tickets")
	}
	return nil
}

// CheckUnassign validates releasing a ticket back to the open queue. The same
// resolved-ticket rule as CheckAssign applies: admins only.
func CheckUnassign(ticket *domain.Ticket, actor domain.ActorRole) error {
	if ticket.Status == domain.TicketStatusResolved && actor != domain.ActorRoleAdmin {
		return apperrors.NewForbidden("only admins can modify resolved tickets")
	}
	return nil
}

// CanComment decides whether an actor may comment on the ticket.
//   - user: only while the ticket is unassigned and waiting or open;
//   - technician: any non-resolved ticket;
//   - admin: always.
func CanComment(ticket *domain.Ticket, actor domain.ActorRole) error {
	switch actor {
	case domain.ActorRoleAdmin:
		return nil
	case domain.ActorRoleTechnician:
		if ticket.Status == domain.TicketStatusResolved {
			return apperrors.NewForbidden("only admins can comment on resolved tickets")
		}
		return nil
	case domain.ActorRoleUser:
		if ticket.AssignedToID != nil {
			return apperrors.NewForbidden("users cannot comment after the ticket is assigned")
		}
		if ticket.Status != domain.TicketStatusWaiting && ticket.Status != domain.TicketStatusOpen {
			return apperrors.NewForbidden("users can only comment on waiting or open tickets")
		}
		return nil
	default:
		return apperrors.NewInvalidArgument("invalid actor role", map[string]any{"role": actor})
	}
}

// ApplyAssign mutates the ticket for assignment: assignment forces the ticket
// into in_progress and stamps acceptedAt. A resolved ticket that an admin
// reassigns leaves the resolved state, so resolvedAt is cleared to keep
// resolvedAt != nil equivalent to status == resolved.
func ApplyAssign(ticket *domain.Ticket, technicianID string, now time.Time) {
	ticket.AssignedToID = &technicianID
	ticket.Status = domain.TicketStatusInProgress
	ticket.AcceptedAt = &now
	ticket.ResolvedAt = nil
	ticket.UpdatedAt = now
}

// ApplyUnassign clears the assignment and returns the ticket to the open
// queue. Like ApplyAssign it moves the ticket out of resolved, so resolvedAt
// is cleared as well.
func ApplyUnassign(ticket *domain.Ticket, now time.Time) {
	ticket.AssignedToID = nil
	ticket.Status = domain.TicketStatusOpen
	ticket.AcceptedAt = nil
	ticket.ResolvedAt = nil
	ticket.UpdatedAt = now
}

// ApplyStatus mutates the ticket for a status change. resolvedAt is stamped
// only on the transition into resolved (repeat calls do not bump it) and is
// cleared when an admin moves the ticket out of resolved, keeping
// resolvedAt != nil equivalent to status == resolved.
func ApplyStatus(ticket *domain.Ticket, next domain.TicketStatus, now time.Time) {
	if next == domain.TicketStatusResolved && ticket.Status != domain.TicketStatusResolved {
		ticket.ResolvedAt = &now
	}
	if next != domain.TicketStatusResolved {
		ticket.ResolvedAt = nil
	}
	ticket.Status = next
	ticket.UpdatedAt = now
}

// ApplyPriority mutates the ticket for a priority change.
func ApplyPriority(ticket *domain.Ticket, next domain.TicketPriority, now time.Time) {
	ticket.Priority = next
	ticket.UpdatedAt = now
}
