// Package metrics derives time-based KPIs from ticket timestamps. All
// computations are pure over an in-memory ticket slice; filtering happens
// before aggregation so filtered reports are recomputed from scratch.
package metrics

import (
	"math"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketTimes holds per-ticket derived intervals in minutes. A nil field means
// the contributing endpoint is missing and the ticket is excluded from the
// corresponding average.
type TicketTimes struct {
	WaitingMinutes *float64
	WorkMinutes    *float64
	TotalMinutes   *float64
}

// Stats aggregates counts and mean intervals over a ticket set.
type Stats struct {
	Total                      int     `json:"total"`
	Open                       int     `json:"open"`
	InProgress                 int     `json:"inProgress"`
	Resolved                   int     `json:"resolved"`
	HighPriority               int     `json:"highPriority"`
	MediumPriority             int     `json:"mediumPriority"`
	LowPriority                int     `json:"lowPriority"`
	AvgResolutionTimeMinutes   float64 `json:"avgResolutionTimeMinutes"`
	AvgWaitingTimeMinutes      float64 `json:"avgWaitingTimeMinutes"`
	TotalResolutionTimeMinutes float64 `json:"totalResolutionTimeMinutes"`
}

// PriorityDistribution holds the share of each settable priority as integer
// percentages. All zero when the set is empty.
type PriorityDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// TechnicianStats summarizes one assignee's workload.
type TechnicianStats struct {
	TechnicianID             string  `json:"technicianId"`
	TechnicianName           string  `json:"technicianName"`
	TotalTickets             int     `json:"totalTickets"`
	ResolvedTickets          int     `json:"resolvedTickets"`
	AvgResolutionTimeMinutes float64 `json:"avgResolutionTimeMinutes"`
}

func minutesBetween(from, to time.Time) float64 {
	return to.Sub(from).Minutes()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Times computes the derived intervals for a single ticket. Non-monotonic
// timestamps are a data-integrity anomaly, not a failure: the interval is
// still reported as-is (it may be negative) so callers can surface a warning.
func Times(t *domain.Ticket) TicketTimes {
	var times TicketTimes
	if t.AcceptedAt != nil {
		waiting := minutesBetween(t.CreatedAt, *t.AcceptedAt)
		times.WaitingMinutes = &waiting
		if t.ResolvedAt != nil {
			work := minutesBetween(*t.AcceptedAt, *t.ResolvedAt)
			times.WorkMinutes = &work
		}
	}
	if t.ResolvedAt != nil {
		total := minutesBetween(t.CreatedAt, *t.ResolvedAt)
		times.TotalMinutes = &total
	}
	return times
}

// Compute aggregates a ticket set. Means run over qualifying tickets only
// (both endpoints present), rounded to one decimal, and are 0 when the
// qualifying set is empty.
func Compute(tickets []domain.Ticket) Stats {
	stats := Stats{Total: len(tickets)}

	var workSum, waitingSum, totalSum float64
	var workCount, waitingCount, totalCount int

	for i := range tickets {
		t := &tickets[i]
		switch t.Status {
		case domain.TicketStatusOpen:
			stats.Open++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusResolved:
			stats.Resolved++
		}
		switch t.Priority {
		case domain.TicketPriorityHigh:
			stats.HighPriority++
		case domain.TicketPriorityMedium:
			stats.MediumPriority++
		case domain.TicketPriorityLow:
			stats.LowPriority++
		}

		times := Times(t)
		if times.WorkMinutes != nil {
			workSum += *times.WorkMinutes
			workCount++
		}
		if times.WaitingMinutes != nil {
			waitingSum += *times.WaitingMinutes
			waitingCount++
		}
		if times.TotalMinutes != nil {
			totalSum += *times.TotalMinutes
			totalCount++
		}
	}

	if workCount > 0 {
		stats.AvgResolutionTimeMinutes = round1(workSum / float64(workCount))
	}
	if waitingCount > 0 {
		stats.AvgWaitingTimeMinutes = round1(waitingSum / float64(waitingCount))
	}
	if totalCount > 0 {
		stats.TotalResolutionTimeMinutes = round1(totalSum / float64(totalCount))
	}
	return stats
}

// Distribution converts priority counts into integer percentages, guarding
// division by zero.
func Distribution(stats Stats) PriorityDistribution {
	if stats.Total == 0 {
		return PriorityDistribution{}
	}
	pct := func(count int) int {
		return int(math.Round(float64(count) / float64(stats.Total) * 100))
	}
	return PriorityDistribution{
		High:   pct(stats.HighPriority),
		Medium: pct(stats.MediumPriority),
		Low:    pct(stats.LowPriority),
	}
}

// TechnicianPerformance groups tickets by assignee and reports workload plus
// the mean work time over each group's resolved tickets. Unassigned tickets
// are excluded. nameByID supplies display names; missing entries leave the
// name empty (deleted technician).
func TechnicianPerformance(tickets []domain.Ticket, nameByID map[string]string) []TechnicianStats {
	type group struct {
		stats     TechnicianStats
		workSum   float64
		workCount int
	}
	groups := make(map[string]*group)
	order := make([]string, 0)

	for i := range tickets {
		t := &tickets[i]
		if t.AssignedToID == nil {
			continue
		}
		id := *t.AssignedToID
		g, ok := groups[id]
		if !ok {
			g = &group{stats: TechnicianStats{
				TechnicianID:   id,
				TechnicianName: nameByID[id],
			}}
			groups[id] = g
			order = append(order, id)
		}
		g.stats.TotalTickets++
		if t.Status == domain.TicketStatusResolved {
			g.stats.ResolvedTickets++
		}
		if times := Times(t); times.WorkMinutes != nil {
			g.workSum += *times.WorkMinutes
			g.workCount++
		}
	}

	result := make([]TechnicianStats, 0, len(order))
	for _, id := range order {
		g := groups[id]
		if g.workCount > 0 {
			g.stats.AvgResolutionTimeMinutes = round1(g.workSum / float64(g.workCount))
		}
		result = append(result, g.stats)
	}
	return result
}

// FilterByCreatedRange keeps tickets whose creation calendar day in loc falls
// within [from, to] inclusive. Nil bounds are open.
func FilterByCreatedRange(tickets []domain.Ticket, from, to *time.Time, loc *time.Location) []domain.Ticket {
	if from == nil && to == nil {
		return tickets
	}
	day := func(t time.Time) time.Time {
		y, m, d := t.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	filtered := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		created := day(t.CreatedAt)
		if from != nil && created.Before(day(*from)) {
			continue
		}
		if to != nil && created.After(day(*to)) {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}

// FilterBySector keeps tickets whose sector matches case-insensitively.
func FilterBySector(tickets []domain.Ticket, sector string) []domain.Ticket {
	sector = strings.TrimSpace(sector)
	if sector == "" {
		return tickets
	}
	filtered := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if strings.EqualFold(t.Sector, sector) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
