package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/lifecycle"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows: it reads current state, asks
// the lifecycle rules for a verdict, writes back, and publishes the resulting
// event. The store write decides success; event delivery is fire-and-forget.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	clock      domain.Clock
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	UserRepo    repository.UserRepository
	Clock       domain.Clock
	Dispatcher  events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title          string
	Description    string
	Sector         string
	ProblemType    string
	Priority       domain.TicketPriority
	RequesterName  string
	RequesterEmail string
	Attachments    []string
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Status       *domain.TicketStatus
	TechnicianID *string
}

// CommentInput describes a new comment. Actor is the permission class of the
// caller; AuthorType is what gets recorded on the thread entry.
type CommentInput struct {
	TicketID    string
	Content     string
	AuthorName  string
	AuthorType  domain.CommentAuthorType
	Actor       domain.ActorRole
	Attachments []string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		clock:      deps.Clock,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket creates a ticket in the waiting state.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.SettableTicketPriority(priority) {
		return nil, apperrors.NewInvalidArgument("invalid priority", map[string]any{"priority": priority})
	}

	now := s.clock.Now()
	ticket := &domain.Ticket{
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Sector:         strings.TrimSpace(input.Sector),
		ProblemType:    strings.TrimSpace(input.ProblemType),
		Priority:       priority,
		Status:         domain.TicketStatusWaiting,
		RequesterName:  strings.TrimSpace(input.RequesterName),
		RequesterEmail: strings.TrimSpace(input.RequesterEmail),
		Attachments:    input.Attachments,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewDependencyFailure("create ticket", err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload:  events.TicketCreatedPayload{Ticket: *ticket},
	})
	return ticket, nil
}

// GetTicket fetches a ticket with its comment thread and assignee.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.TicketWithDetails, error) {
	ticket, err := s.loadTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withDetails(ctx, ticket)
}

// GetTicketByNumber fetches a ticket by its human-facing sequential number,
// the handle requesters receive by email.
func (s *TicketService) GetTicketByNumber(ctx context.Context, number int64) (*domain.TicketWithDetails, error) {
	ticket, err := s.tickets.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_number": number})
		}
		return nil, apperrors.NewDependencyFailure("load ticket", err)
	}
	return s.withDetails(ctx, ticket)
}

// ListTickets returns tickets with details, ordered by priority rank then
// newest created. A technician filter selects their queue plus the unassigned
// pool.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.TicketWithDetails, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		Status:       filter.Status,
		TechnicianID: filter.TechnicianID,
	})
	if err != nil {
		return nil, apperrors.NewDependencyFailure("list tickets", err)
	}

	assignees := map[string]*domain.User{}
	result := make([]domain.TicketWithDetails, 0, len(tickets))
	for i := range tickets {
		detail := domain.TicketWithDetails{Ticket: tickets[i]}
		comments, err := s.comments.ListByTicket(ctx, tickets[i].ID)
		if err != nil {
			return nil, apperrors.NewDependencyFailure("list comments", err)
		}
		detail.Comments = comments
		if id := tickets[i].AssignedToID; id != nil {
			assignee, ok := assignees[*id]
			if !ok {
				assignee = s.lookupUser(ctx, *id)
				assignees[*id] = assignee
			}
			detail.AssignedTo = assignee
		}
		result = append(result, detail)
	}
	return result, nil
}

// AssignTicket assigns the ticket to a technician, forcing it into
// in_progress and stamping acceptedAt. The store update is conditional on the
// previously observed assignee; a lost race surfaces as Conflict.
func (s *TicketService) AssignTicket(ctx context.Context, ticketID, technicianID string, actor domain.ActorRole) (*domain.Ticket, error) {
	technician, err := s.users.GetByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("technician", map[string]any{"technician_id": technicianID})
		}
		return nil, apperrors.NewDependencyFailure("load technician", err)
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckAssign(ticket, actor); err != nil {
		return nil, err
	}

	expected := ticket.AssignedToID
	lifecycle.ApplyAssign(ticket, technician.ID, s.clock.Now())
	if err := s.tickets.UpdateAssignment(ctx, ticket, expected); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConflict("ticket assignment changed concurrently", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewDependencyFailure("assign ticket", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Payload:  events.TicketAssignedPayload{Ticket: *ticket, Technician: *technician},
	})
	return ticket, nil
}

// UnassignTicket clears the assignment and returns the ticket to open. Uses
// the same conditional update as assignment, and the same resolved-ticket
// guard: only admins may pull a resolved ticket back into the queue.
func (s *TicketService) UnassignTicket(ctx context.Context, ticketID string, actor domain.ActorRole) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckUnassign(ticket, actor); err != nil {
		return nil, err
	}

	expected := ticket.AssignedToID
	lifecycle.ApplyUnassign(ticket, s.clock.Now())
	if err := s.tickets.UpdateAssignment(ctx, ticket, expected); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConflict("ticket assignment changed concurrently", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewDependencyFailure("unassign ticket", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUnassigned,
		TicketID: ticket.ID,
		Payload:  events.TicketUnassignedPayload{Ticket: *ticket},
	})
	return ticket, nil
}

// UpdateStatus changes ticket status. Resolved tickets are frozen for
// non-admin actors; the transition into resolved stamps resolvedAt exactly
// once.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID string, newStatus domain.TicketStatus, actor domain.ActorRole, actorName string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckStatusChange(ticket.Status, newStatus, actor); err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	lifecycle.ApplyStatus(ticket, newStatus, s.clock.Now())
	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewDependencyFailure("update status", err)
	}

	if oldStatus != newStatus {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Actor:    actorName,
			Payload: events.TicketStatusChangedPayload{
				Ticket:    *ticket,
				OldStatus: oldStatus,
				NewStatus: newStatus,
				ChangedBy: actorName,
			},
		})
	}
	return ticket, nil
}

// UpdatePriority changes ticket priority. Only low, medium, and high are
// settable; the event fires only when the value actually changed.
func (s *TicketService) UpdatePriority(ctx context.Context, ticketID string, newPriority domain.TicketPriority, updatedBy string) (*domain.Ticket, error) {
	if err := lifecycle.CheckPriorityChange(newPriority); err != nil {
		return nil, err
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldPriority := ticket.Priority
	lifecycle.ApplyPriority(ticket, newPriority, s.clock.Now())
	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewDependencyFailure("update priority", err)
	}

	if oldPriority != newPriority {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketPriorityChanged,
			TicketID: ticket.ID,
			Actor:    updatedBy,
			Payload: events.TicketPriorityChangedPayload{
				Ticket:      *ticket,
				OldPriority: oldPriority,
				NewPriority: newPriority,
				UpdatedBy:   updatedBy,
			},
		})
	}
	return ticket, nil
}

// AddComment appends an immutable comment to the ticket thread, subject to
// the comment-permission rules.
func (s *TicketService) AddComment(ctx context.Context, input CommentInput) (*domain.Comment, error) {
	if !domain.ValidCommentAuthorType(input.AuthorType) {
		return nil, apperrors.NewInvalidArgument("invalid author type", map[string]any{"author_type": input.AuthorType})
	}
	if !domain.ValidActorRole(input.Actor) {
		return nil, apperrors.NewInvalidArgument("invalid actor role", map[string]any{"role": input.Actor})
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, apperrors.NewInvalidArgument("comment content is required", nil)
	}

	ticket, err := s.loadTicket(ctx, input.TicketID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanComment(ticket, input.Actor); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		TicketID:    ticket.ID,
		Content:     strings.TrimSpace(input.Content),
		AuthorName:  strings.TrimSpace(input.AuthorName),
		AuthorType:  input.AuthorType,
		Attachments: input.Attachments,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.NewDependencyFailure("create comment", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticket.ID,
		Actor:    comment.AuthorName,
		Payload: events.CommentAddedPayload{
			Ticket:     *ticket,
			AuthorName: comment.AuthorName,
			AuthorType: comment.AuthorType,
			ActorRole:  input.Actor,
		},
	})
	return comment, nil
}

// DeleteTicket removes a ticket and, through the store's cascade, its
// comment thread. Admin-only at the API layer.
func (s *TicketService) DeleteTicket(ctx context.Context, id string) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return apperrors.NewDependencyFailure("delete ticket", err)
	}
	return nil
}

func (s *TicketService) loadTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.NewDependencyFailure("load ticket", err)
	}
	return ticket, nil
}

func (s *TicketService) withDetails(ctx context.Context, ticket *domain.Ticket) (*domain.TicketWithDetails, error) {
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.NewDependencyFailure("list comments", err)
	}
	detail := &domain.TicketWithDetails{Ticket: *ticket, Comments: comments}
	if ticket.AssignedToID != nil {
		detail.AssignedTo = s.lookupUser(ctx, *ticket.AssignedToID)
	}
	return detail, nil
}

// lookupUser resolves an assignee, tolerating dangling references left by
// user deletion.
func (s *TicketService) lookupUser(ctx context.Context, id string) *domain.User {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil
	}
	return user
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
