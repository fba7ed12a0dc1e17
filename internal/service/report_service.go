package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/metrics"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	statsCacheKey       = "helpdesk:reports:stats"
	performanceCacheKey = "helpdesk:reports:technician_performance"
	reportCacheTTL      = 30 * time.Second
)

// ReportFilter narrows the ticket set: calendar-day inclusive date range in
// the reference timezone, plus case-insensitive sector match.
type ReportFilter struct {
	From   *time.Time
	To     *time.Time
	Sector string
}

func (f ReportFilter) empty() bool {
	return f.From == nil && f.To == nil && f.Sector == ""
}

// StatsReport pairs the aggregate stats with the priority distribution, the
// shape the dashboard consumes.
type StatsReport struct {
	metrics.Stats
	PriorityDistribution metrics.PriorityDistribution `json:"priorityDistribution"`
}

// ReportService computes ticket KPIs. Unfiltered reports are cached in Redis
// under a short TTL; any ticket event invalidates the cache. Filtered reports
// are always computed fresh. The service degrades to uncached computation
// when Redis is absent.
type ReportService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
	clock   domain.Clock
	cache   *redis.Client
	logger  *zap.Logger
}

// ReportDependencies bundles collaborators for report service.
type ReportDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Clock      domain.Clock
	Cache      *redis.Client
	Logger     *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		tickets: deps.TicketRepo,
		users:   deps.UserRepo,
		clock:   deps.Clock,
		cache:   deps.Cache,
		logger:  logger,
	}
}

// RegisterInvalidation subscribes cache invalidation to every ticket event.
func (s *ReportService) RegisterInvalidation(dispatcher events.Dispatcher) {
	if s.cache == nil {
		return
	}
	for _, eventType := range events.AllTypes() {
		dispatcher.Subscribe(eventType, func(ctx context.Context, _ events.Event) error {
			if err := s.cache.Del(ctx, statsCacheKey, performanceCacheKey).Err(); err != nil {
				s.logger.Warn("report cache invalidation failed", zap.Error(err))
			}
			return nil
		})
	}
}

// GetStats aggregates counts, mean intervals, and the priority distribution
// over the filtered ticket set.
func (s *ReportService) GetStats(ctx context.Context, filter ReportFilter) (*StatsReport, error) {
	if filter.empty() {
		if cached, ok := s.cachedReport(ctx, statsCacheKey, &StatsReport{}); ok {
			return cached.(*StatsReport), nil
		}
	}

	tickets, err := s.filteredTickets(ctx, filter)
	if err != nil {
		return nil, err
	}

	stats := metrics.Compute(tickets)
	report := &StatsReport{
		Stats:                stats,
		PriorityDistribution: metrics.Distribution(stats),
	}

	if filter.empty() {
		s.storeReport(ctx, statsCacheKey, report)
	}
	return report, nil
}

// GetTechnicianPerformance reports per-technician workload over the filtered
// ticket set, in first-assignment order.
func (s *ReportService) GetTechnicianPerformance(ctx context.Context, filter ReportFilter) ([]metrics.TechnicianStats, error) {
	if filter.empty() {
		var cached []metrics.TechnicianStats
		if found, ok := s.cachedReport(ctx, performanceCacheKey, &cached); ok {
			return *found.(*[]metrics.TechnicianStats), nil
		}
	}

	tickets, err := s.filteredTickets(ctx, filter)
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	if users, err := s.users.ListAll(ctx); err == nil {
		for i := range users {
			names[users[i].ID] = users[i].Name
		}
	} else {
		s.logger.Warn("technician name lookup failed", zap.Error(err))
	}

	performance := metrics.TechnicianPerformance(tickets, names)
	if filter.empty() {
		s.storeReport(ctx, performanceCacheKey, performance)
	}
	return performance, nil
}

func (s *ReportService) filteredTickets(ctx context.Context, filter ReportFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, apperrors.NewDependencyFailure("list tickets", err)
	}
	tickets = metrics.FilterByCreatedRange(tickets, filter.From, filter.To, s.clock.Location())
	tickets = metrics.FilterBySector(tickets, filter.Sector)
	return tickets, nil
}

func (s *ReportService) cachedReport(ctx context.Context, key string, target any) (any, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("report cache read failed", zap.Error(err))
		}
		return nil, false
	}
	if err := json.Unmarshal(raw, target); err != nil {
		s.logger.Warn("report cache decode failed", zap.Error(err))
		return nil, false
	}
	return target, true
}

func (s *ReportService) storeReport(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, reportCacheTTL).Err(); err != nil {
		s.logger.Warn("report cache write failed", zap.Error(err))
	}
}
