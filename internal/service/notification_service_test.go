package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

func newNotificationFixture() (*recordingDispatcher, *recordingMailer, *fakeUserRepo) {
	dispatcher := newRecordingDispatcher()
	mailer := &recordingMailer{}
	users := newFakeUserRepo()
	svc := NewNotificationService(mailer, users, nil)
	svc.Register(dispatcher)
	return dispatcher, mailer, users
}

func TestNotifications_TicketCreated(t *testing.T) {
	dispatcher, mailer, users := newNotificationFixture()
	users.seed(domain.User{ID: "u1", Name: "Maria", Role: domain.UserRoleTechnician})

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventTicketCreated,
		Payload: events.TicketCreatedPayload{Ticket: domain.Ticket{TicketNumber: 1001, RequesterEmail: "joao@empresa.com"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{1001}, mailer.created)
	assert.Equal(t, []int64{1001}, mailer.staffNotices)
}

func TestNotifications_ResolvedOnlyOnTransition(t *testing.T) {
	dispatcher, mailer, _ := newNotificationFixture()

	_ = dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventTicketStatusChanged,
		Payload: events.TicketStatusChangedPayload{
			Ticket:    domain.Ticket{TicketNumber: 1001},
			OldStatus: domain.TicketStatusInProgress,
			NewStatus: domain.TicketStatusResolved,
			ChangedBy: "Maria",
		},
	})
	assert.Equal(t, []int64{1001}, mailer.resolved)

	// Transitions that do not enter resolved stay silent.
	_ = dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventTicketStatusChanged,
		Payload: events.TicketStatusChangedPayload{
			Ticket:    domain.Ticket{TicketNumber: 1002},
			OldStatus: domain.TicketStatusOpen,
			NewStatus: domain.TicketStatusInProgress,
		},
	})
	_ = dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventTicketStatusChanged,
		Payload: events.TicketStatusChangedPayload{
			Ticket:    domain.Ticket{TicketNumber: 1003},
			OldStatus: domain.TicketStatusResolved,
			NewStatus: domain.TicketStatusResolved,
		},
	})
	assert.Equal(t, []int64{1001}, mailer.resolved)
}

func TestNotifications_CommentOnlyFromTechnicians(t *testing.T) {
	dispatcher, mailer, _ := newNotificationFixture()

	_ = dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventCommentAdded,
		Payload: events.CommentAddedPayload{
			Ticket:     domain.Ticket{TicketNumber: 1001},
			AuthorName: "Maria",
			AuthorType: domain.CommentAuthorTechnician,
			ActorRole:  domain.ActorRoleTechnician,
		},
	})
	assert.Equal(t, []string{"Maria"}, mailer.comments)

	// Requester comments and admin notes do not mail the requester.
	_ = dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventCommentAdded,
		Payload: events.CommentAddedPayload{
			Ticket:     domain.Ticket{TicketNumber: 1001},
			AuthorName: "João",
			AuthorType: domain.CommentAuthorUser,
			ActorRole:  domain.ActorRoleUser,
		},
	})
	_ = dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventCommentAdded,
		Payload: events.CommentAddedPayload{
			Ticket:     domain.Ticket{TicketNumber: 1001},
			AuthorName: "Admin",
			AuthorType: domain.CommentAuthorTechnician,
			ActorRole:  domain.ActorRoleAdmin,
		},
	})
	assert.Equal(t, []string{"Maria"}, mailer.comments)
}

func TestNotifications_PriorityChanged(t *testing.T) {
	dispatcher, mailer, _ := newNotificationFixture()

	_ = dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventTicketPriorityChanged,
		Payload: events.TicketPriorityChangedPayload{
			Ticket:      domain.Ticket{TicketNumber: 1001},
			OldPriority: domain.TicketPriorityMedium,
			NewPriority: domain.TicketPriorityHigh,
			UpdatedBy:   "Maria",
		},
	})

	assert.Equal(t, []domain.TicketPriority{domain.TicketPriorityHigh}, mailer.priority)
}

func TestNotifications_MailerFailureSurfacesToDispatcher(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	mailer := &recordingMailer{failAll: errors.New("smtp down")}
	svc := NewNotificationService(mailer, newFakeUserRepo(), nil)
	svc.Register(dispatcher)

	err := dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventTicketAssigned,
		Payload: events.TicketAssignedPayload{
			Ticket:     domain.Ticket{TicketNumber: 1001},
			Technician: domain.User{Name: "Maria"},
		},
	})
	// The handler reports the failure so the async queue can retry.
	require.Error(t, err)
	assert.Empty(t, mailer.assigned)
}
