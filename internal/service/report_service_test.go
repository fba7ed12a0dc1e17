package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func newReportFixture() (*ReportService, *fakeTicketRepo, *fakeUserRepo) {
	tickets := newFakeTicketRepo()
	users := newFakeUserRepo()
	svc := NewReportService(ReportDependencies{
		TicketRepo: tickets,
		UserRepo:   users,
		Clock:      domain.FixedClock{Instant: testNow},
	})
	return svc, tickets, users
}

func seedResolved(tickets *fakeTicketRepo, id, sector string, created time.Time, waiting, work time.Duration, assignee string) {
	accepted := created.Add(waiting)
	resolved := accepted.Add(work)
	ticket := domain.Ticket{
		ID:         id,
		Status:     domain.TicketStatusResolved,
		Priority:   domain.TicketPriorityMedium,
		Sector:     sector,
		CreatedAt:  created,
		AcceptedAt: &accepted,
		ResolvedAt: &resolved,
	}
	if assignee != "" {
		ticket.AssignedToID = &assignee
	}
	tickets.seed(ticket)
}

func TestGetStats_Unfiltered(t *testing.T) {
	svc, tickets, _ := newReportFixture()
	created := testNow.Add(-24 * time.Hour)
	seedResolved(tickets, "t1", "TI", created, 30*time.Minute, 60*time.Minute, "")
	tickets.seed(domain.Ticket{ID: "t2", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityHigh, CreatedAt: created})

	report, err := svc.GetStats(context.Background(), ReportFilter{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Resolved)
	assert.Equal(t, 1, report.Open)
	assert.Equal(t, 60.0, report.AvgResolutionTimeMinutes)
	assert.Equal(t, 30.0, report.AvgWaitingTimeMinutes)
	assert.Equal(t, 50, report.PriorityDistribution.High)
	assert.Equal(t, 50, report.PriorityDistribution.Medium)
}

func TestGetStats_SectorFilter(t *testing.T) {
	svc, tickets, _ := newReportFixture()
	created := testNow.Add(-24 * time.Hour)
	seedResolved(tickets, "t1", "TI", created, 10*time.Minute, 20*time.Minute, "")
	seedResolved(tickets, "t2", "Financeiro", created, 10*time.Minute, 200*time.Minute, "")

	report, err := svc.GetStats(context.Background(), ReportFilter{Sector: "ti"})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 20.0, report.AvgResolutionTimeMinutes)
}

func TestGetStats_DateRangeFilter(t *testing.T) {
	svc, tickets, _ := newReportFixture()
	seedResolved(tickets, "old", "TI", testNow.Add(-10*24*time.Hour), time.Minute, time.Minute, "")
	seedResolved(tickets, "recent", "TI", testNow.Add(-time.Hour), time.Minute, time.Minute, "")

	from := testNow.Add(-48 * time.Hour)
	report, err := svc.GetStats(context.Background(), ReportFilter{From: &from})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Total)
}

func TestGetTechnicianPerformance_ResolvesNames(t *testing.T) {
	svc, tickets, users := newReportFixture()
	users.seed(domain.User{ID: "tech-1", Name: "Maria", Role: domain.UserRoleTechnician})
	created := testNow.Add(-24 * time.Hour)
	seedResolved(tickets, "t1", "TI", created, 10*time.Minute, 40*time.Minute, "tech-1")
	seedResolved(tickets, "t2", "TI", created, 10*time.Minute, 80*time.Minute, "tech-1")

	perf, err := svc.GetTechnicianPerformance(context.Background(), ReportFilter{})
	require.NoError(t, err)

	require.Len(t, perf, 1)
	assert.Equal(t, "Maria", perf[0].TechnicianName)
	assert.Equal(t, 2, perf[0].TotalTickets)
	assert.Equal(t, 2, perf[0].ResolvedTickets)
	assert.Equal(t, 60.0, perf[0].AvgResolutionTimeMinutes)
}

func TestReports_NoCacheStillServes(t *testing.T) {
	// Cache is nil in these fixtures; both report paths must compute fresh
	// results without touching Redis.
	svc, tickets, _ := newReportFixture()
	tickets.seed(domain.Ticket{ID: "t1", Status: domain.TicketStatusWaiting, Priority: domain.TicketPriorityLow, CreatedAt: testNow})

	report, err := svc.GetStats(context.Background(), ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)

	perf, err := svc.GetTechnicianPerformance(context.Background(), ReportFilter{})
	require.NoError(t, err)
	assert.Empty(t, perf)
}
