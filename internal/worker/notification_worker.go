package worker

import (
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// StartNotificationWorker wires notification handlers and report-cache
// invalidation onto the event dispatcher.
func StartNotificationWorker(dispatcher events.Dispatcher, notifications *service.NotificationService, reports *service.ReportService) {
	if notifications != nil {
		notifications.Register(dispatcher)
	}
	if reports != nil {
		reports.RegisterInvalidation(dispatcher)
	}
}
