package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

var base = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }
func strPtr(s string) *string        { return &s }

// resolvedTicket creates a ticket created at base, accepted after waiting
// minutes, and resolved after a further work minutes.
func resolvedTicket(waiting, work float64) domain.Ticket {
	accepted := base.Add(time.Duration(waiting * float64(time.Minute)))
	resolved := accepted.Add(time.Duration(work * float64(time.Minute)))
	return domain.Ticket{
		Status:     domain.TicketStatusResolved,
		Priority:   domain.TicketPriorityMedium,
		CreatedAt:  base,
		AcceptedAt: timePtr(accepted),
		ResolvedAt: timePtr(resolved),
	}
}

func TestTimes_FullLifecycle(t *testing.T) {
	// Created at T0, accepted 30 minutes later, resolved 120 minutes after
	// acceptance: waiting 30, work 120, total 150.
	ticket := resolvedTicket(30, 120)

	times := Times(&ticket)

	require.NotNil(t, times.WaitingMinutes)
	require.NotNil(t, times.WorkMinutes)
	require.NotNil(t, times.TotalMinutes)
	assert.Equal(t, 30.0, *times.WaitingMinutes)
	assert.Equal(t, 120.0, *times.WorkMinutes)
	assert.Equal(t, 150.0, *times.TotalMinutes)
}

func TestTimes_MissingEndpoints(t *testing.T) {
	unaccepted := domain.Ticket{Status: domain.TicketStatusWaiting, CreatedAt: base}
	times := Times(&unaccepted)
	assert.Nil(t, times.WaitingMinutes)
	assert.Nil(t, times.WorkMinutes)
	assert.Nil(t, times.TotalMinutes)

	accepted := domain.Ticket{
		Status:     domain.TicketStatusInProgress,
		CreatedAt:  base,
		AcceptedAt: timePtr(base.Add(10 * time.Minute)),
	}
	times = Times(&accepted)
	require.NotNil(t, times.WaitingMinutes)
	assert.Equal(t, 10.0, *times.WaitingMinutes)
	assert.Nil(t, times.WorkMinutes)
	assert.Nil(t, times.TotalMinutes)

	// Resolved without acceptance still yields a total time.
	skipped := domain.Ticket{
		Status:     domain.TicketStatusResolved,
		CreatedAt:  base,
		ResolvedAt: timePtr(base.Add(45 * time.Minute)),
	}
	times = Times(&skipped)
	assert.Nil(t, times.WaitingMinutes)
	assert.Nil(t, times.WorkMinutes)
	require.NotNil(t, times.TotalMinutes)
	assert.Equal(t, 45.0, *times.TotalMinutes)
}

func TestCompute_AveragesOverQualifyingOnly(t *testing.T) {
	// One resolved ticket with 60 work minutes plus two unresolved tickets:
	// the mean divides by the one qualifying ticket, not the set size.
	tickets := []domain.Ticket{
		resolvedTicket(10, 60),
		{Status: domain.TicketStatusWaiting, Priority: domain.TicketPriorityLow, CreatedAt: base},
		{Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityHigh, CreatedAt: base},
	}

	stats := Compute(tickets)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, 1, stats.Open)
	assert.Equal(t, 60.0, stats.AvgResolutionTimeMinutes)
	assert.Equal(t, 10.0, stats.AvgWaitingTimeMinutes)
	assert.Equal(t, 70.0, stats.TotalResolutionTimeMinutes)
}

func TestCompute_RoundsToOneDecimal(t *testing.T) {
	tickets := []domain.Ticket{
		resolvedTicket(0, 10),
		resolvedTicket(0, 11),
		resolvedTicket(0, 11),
	}

	stats := Compute(tickets)

	// (10+11+11)/3 = 10.666... rounds to 10.7.
	assert.Equal(t, 10.7, stats.AvgResolutionTimeMinutes)
}

func TestCompute_EmptySetYieldsZeroes(t *testing.T) {
	stats := Compute(nil)

	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0.0, stats.AvgResolutionTimeMinutes)
	assert.Equal(t, 0.0, stats.AvgWaitingTimeMinutes)
	assert.Equal(t, 0.0, stats.TotalResolutionTimeMinutes)
}

func TestCompute_PriorityCounts(t *testing.T) {
	tickets := []domain.Ticket{
		{Priority: domain.TicketPriorityHigh, CreatedAt: base},
		{Priority: domain.TicketPriorityHigh, CreatedAt: base},
		{Priority: domain.TicketPriorityMedium, CreatedAt: base},
		{Priority: domain.TicketPriorityLow, CreatedAt: base},
		{Priority: domain.TicketPriorityWaiting, CreatedAt: base},
	}

	stats := Compute(tickets)

	assert.Equal(t, 2, stats.HighPriority)
	assert.Equal(t, 1, stats.MediumPriority)
	assert.Equal(t, 1, stats.LowPriority)
}

func TestDistribution(t *testing.T) {
	stats := Stats{Total: 4, HighPriority: 2, MediumPriority: 1, LowPriority: 1}

	dist := Distribution(stats)

	assert.Equal(t, 50, dist.High)
	assert.Equal(t, 25, dist.Medium)
	assert.Equal(t, 25, dist.Low)
}

func TestDistribution_EmptySet(t *testing.T) {
	dist := Distribution(Stats{})
	assert.Equal(t, 0, dist.High)
	assert.Equal(t, 0, dist.Medium)
	assert.Equal(t, 0, dist.Low)
}

func TestTechnicianPerformance(t *testing.T) {
	alice := resolvedTicket(5, 30)
	alice.AssignedToID = strPtr("tech-a")
	alice2 := resolvedTicket(5, 90)
	alice2.AssignedToID = strPtr("tech-a")
	bobOpen := domain.Ticket{
		Status:       domain.TicketStatusInProgress,
		CreatedAt:    base,
		AcceptedAt:   timePtr(base.Add(time.Minute)),
		AssignedToID: strPtr("tech-b"),
	}
	unassigned := domain.Ticket{Status: domain.TicketStatusWaiting, CreatedAt: base}

	perf := TechnicianPerformance(
		[]domain.Ticket{alice, bobOpen, alice2, unassigned},
		map[string]string{"tech-a": "Alice", "tech-b": "Bob"},
	)

	require.Len(t, perf, 2)
	assert.Equal(t, "tech-a", perf[0].TechnicianID)
	assert.Equal(t, "Alice", perf[0].TechnicianName)
	assert.Equal(t, 2, perf[0].TotalTickets)
	assert.Equal(t, 2, perf[0].ResolvedTickets)
	assert.Equal(t, 60.0, perf[0].AvgResolutionTimeMinutes)

	assert.Equal(t, "tech-b", perf[1].TechnicianID)
	assert.Equal(t, 1, perf[1].TotalTickets)
	assert.Equal(t, 0, perf[1].ResolvedTickets)
	assert.Equal(t, 0.0, perf[1].AvgResolutionTimeMinutes)
}

func TestTechnicianPerformance_DeletedTechnicianKeepsGroup(t *testing.T) {
	ticket := resolvedTicket(5, 30)
	ticket.AssignedToID = strPtr("gone")

	perf := TechnicianPerformance([]domain.Ticket{ticket}, map[string]string{})

	require.Len(t, perf, 1)
	assert.Equal(t, "gone", perf[0].TechnicianID)
	assert.Equal(t, "", perf[0].TechnicianName)
}

func TestFilterByCreatedRange_CalendarDayInclusive(t *testing.T) {
	loc := time.UTC
	day1 := domain.Ticket{CreatedAt: time.Date(2025, 6, 1, 23, 59, 0, 0, loc)}
	day2 := domain.Ticket{CreatedAt: time.Date(2025, 6, 2, 0, 1, 0, 0, loc)}
	day3 := domain.Ticket{CreatedAt: time.Date(2025, 6, 3, 12, 0, 0, 0, loc)}
	tickets := []domain.Ticket{day1, day2, day3}

	from := time.Date(2025, 6, 2, 18, 30, 0, 0, loc)
	to := time.Date(2025, 6, 3, 2, 0, 0, 0, loc)

	// Bounds compare by calendar day, so the whole of June 2 and June 3
	// qualifies regardless of the bound's time of day.
	filtered := FilterByCreatedRange(tickets, &from, &to, loc)

	require.Len(t, filtered, 2)
	assert.Equal(t, day2.CreatedAt, filtered[0].CreatedAt)
	assert.Equal(t, day3.CreatedAt, filtered[1].CreatedAt)
}

func TestFilterByCreatedRange_OpenBounds(t *testing.T) {
	tickets := []domain.Ticket{
		{CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
		{CreatedAt: time.Date(2025, 6, 5, 10, 0, 0, 0, time.UTC)},
	}

	assert.Len(t, FilterByCreatedRange(tickets, nil, nil, time.UTC), 2)

	from := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	assert.Len(t, FilterByCreatedRange(tickets, &from, nil, time.UTC), 1)

	to := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	assert.Len(t, FilterByCreatedRange(tickets, nil, &to, time.UTC), 1)
}

func TestFilterBySector(t *testing.T) {
	tickets := []domain.Ticket{
		{Sector: "TI"},
		{Sector: "ti"},
		{Sector: "Financeiro"},
	}

	assert.Len(t, FilterBySector(tickets, "TI"), 2)
	assert.Len(t, FilterBySector(tickets, "financeiro"), 1)
	assert.Len(t, FilterBySector(tickets, ""), 3)
	assert.Empty(t, FilterBySector(tickets, "RH"))
}
