package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/notify"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// NotificationService turns ticket events into emails. Handlers return the
// mailer error so the dispatcher's retry loop can re-deliver; a notification
// that ultimately fails never affects the ticket operation that triggered it.
type NotificationService struct {
	mailer notify.Mailer
	users  repository.UserRepository
	logger *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(mailer notify.Mailer, users repository.UserRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{mailer: mailer, users: users, logger: logger}
}

// Register subscribes the notification handlers.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, s.onTicketCreated)
	dispatcher.Subscribe(events.EventTicketAssigned, s.onTicketAssigned)
	dispatcher.Subscribe(events.EventTicketStatusChanged, s.onStatusChanged)
	dispatcher.Subscribe(events.EventTicketPriorityChanged, s.onPriorityChanged)
	dispatcher.Subscribe(events.EventCommentAdded, s.onCommentAdded)
}

func (s *NotificationService) onTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	ticket := payload.Ticket

	var errs []error
	if err := s.mailer.SendTicketCreated(&ticket); err != nil {
		errs = append(errs, err)
	}
	staff, err := s.users.ListAll(ctx)
	if err != nil {
		s.logger.Warn("staff lookup for new-ticket notice failed", zap.Error(err))
	} else if err := s.mailer.SendTicketCreatedToStaff(&ticket, staff); err != nil {
		errs = append(errs, err)
	}
	return joinErrs(errs)
}

func (s *NotificationService) onTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	return s.mailer.SendTicketAssigned(&payload.Ticket, &payload.Technician)
}

// onStatusChanged only mails the requester when the ticket just became
// resolved; other transitions are internal workflow steps.
func (s *NotificationService) onStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	if payload.NewStatus != domain.TicketStatusResolved || payload.OldStatus == domain.TicketStatusResolved {
		return nil
	}
	return s.mailer.SendTicketResolved(&payload.Ticket, payload.ChangedBy)
}

func (s *NotificationService) onPriorityChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketPriorityChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	return s.mailer.SendPriorityChanged(&payload.Ticket, payload.NewPriority, payload.UpdatedBy)
}

// onCommentAdded mails the requester only for technician replies: requesters
// know what they wrote, and admin notes are internal.
func (s *NotificationService) onCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CommentAddedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	if payload.AuthorType != domain.CommentAuthorTechnician || payload.ActorRole == domain.ActorRoleAdmin {
		return nil
	}
	return s.mailer.SendCommentAdded(&payload.Ticket, payload.AuthorName)
}

func joinErrs(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return fmt.Errorf("%v (and %d more)", errs[0], len(errs)-1)
	}
}
