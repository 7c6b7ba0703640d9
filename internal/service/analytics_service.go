package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/checkin-go-api/internal/dto"
	"github.com/noah-isme/checkin-go-api/internal/models"
	"github.com/noah-isme/checkin-go-api/internal/repository"
)

// ErrInvalidHierarchyLevel indicates an unsupported breakdown dimension.
var ErrInvalidHierarchyLevel = errors.New("invalid hierarchy level")

const (
	sexMale      = "MALE"
	sexFemale    = "FEMALE"
	notStated    = "NOT STATED"
	adultEligAge = 18
)

// Fixed output order for the demographic cross-tabs.
var (
	genderOrder   = []string{sexMale, sexFemale, notStated}
	ageGroupOrder = []string{"18-27", "27-35", "35-50", "50-64", "65+", notStated}
)

func statsCacheKey(eventID uint) string {
	return fmt.Sprintf("stats:event:%d", eventID)
}

// AnalyticsService serves the read-side aggregations over the ledger.
type AnalyticsService interface {
	EventStatistics(ctx context.Context, actor models.User, eventID uint) (dto.EventStatisticsResponse, error)
	Hierarchy(ctx context.Context, actor models.User, eventID uint, level, parentName string) (dto.HierarchyBreakdownResponse, error)
	StaffPerformance(ctx context.Context, eventID *uint) (dto.StaffPerformanceResponse, error)
	Overview(ctx context.Context) (dto.OverviewResponse, error)
}

type analyticsService struct {
	analytics    repository.AnalyticsRepository
	checkIns     repository.CheckInRepository
	participants repository.ParticipantRepository
	events       repository.EventRepository
	users        repository.UserRepository
	cache        *redis.Client
	cacheTTL     time.Duration
	location     *time.Location
	logger       zerolog.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

// NewAnalyticsService constructs the analytics service.
func NewAnalyticsService(
	analytics repository.AnalyticsRepository,
	checkIns repository.CheckInRepository,
	participants repository.ParticipantRepository,
	events repository.EventRepository,
	users repository.UserRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	location *time.Location,
	logger zerolog.Logger,
) AnalyticsService {
	if location == nil {
		location = time.UTC
	}

	return &analyticsService{
		analytics:    analytics,
		checkIns:     checkIns,
		participants: participants,
		events:       events,
		users:        users,
		cache:        cache,
		cacheTTL:     cacheTTL,
		location:     location,
		logger:       logger.With().Str("component", "analytics_service").Logger(),
		tracer:       otel.Tracer("github.com/noah-isme/checkin-go-api/internal/service/analytics"),
		now:          time.Now,
	}
}

func (s *analyticsService) EventStatistics(ctx context.Context, actor models.User, eventID uint) (dto.EventStatisticsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.event_statistics", trace.WithAttributes(
		attribute.Int("event.id", int(eventID)),
	))
	defer span.End()

	if err := s.authorize(ctx, actor, eventID); err != nil {
		return dto.EventStatisticsResponse{}, err
	}

	cacheKey := statsCacheKey(eventID)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.EventStatisticsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read statistics cache")
			span.RecordError(err)
		}
	}

	totalCheckIns, err := s.checkIns.CountByEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_check_ins_failed")
		return dto.EventStatisticsResponse{}, err
	}
	totalParticipants, err := s.participants.CountByEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		return dto.EventStatisticsResponse{}, err
	}
	checkedIn, err := s.analytics.ListCheckedInParticipants(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_checked_in_failed")
		return dto.EventStatisticsResponse{}, err
	}

	response := dto.EventStatisticsResponse{
		EventID:           eventID,
		TotalCheckIns:     totalCheckIns,
		TotalParticipants: totalParticipants,
		CheckedIn:         int64(len(checkedIn)),
		Categories:        buildCategories(checkedIn),
		Gender:            s.buildGender(checkedIn),
		AgeGroups:         s.buildAgeGroups(checkedIn),
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store statistics cache")
				span.RecordError(err)
			}
		}
	}

	return response, nil
}

func (s *analyticsService) Hierarchy(ctx context.Context, actor models.User, eventID uint, level, parentName string) (dto.HierarchyBreakdownResponse, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if _, ok := repository.HierarchyColumn(level); !ok {
		return dto.HierarchyBreakdownResponse{}, ErrInvalidHierarchyLevel
	}

	ctx, span := s.tracer.Start(ctx, "analytics.hierarchy", trace.WithAttributes(
		attribute.Int("event.id", int(eventID)),
		attribute.String("hierarchy.level", level),
	))
	defer span.End()

	if err := s.authorize(ctx, actor, eventID); err != nil {
		return dto.HierarchyBreakdownResponse{}, err
	}

	rows, err := s.analytics.HierarchyBreakdown(ctx, eventID, level, strings.TrimSpace(parentName))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "hierarchy_breakdown_failed")
		return dto.HierarchyBreakdownResponse{}, err
	}

	breakdown := make([]dto.DimensionCount, 0, len(rows))
	for _, row := range rows {
		breakdown = append(breakdown, dto.DimensionCount{Name: row.Name, Count: row.Count})
	}

	return dto.HierarchyBreakdownResponse{
		EventID:    eventID,
		Level:      level,
		ParentName: strings.TrimSpace(parentName),
		Breakdown:  breakdown,
	}, nil
}

func (s *analyticsService) StaffPerformance(ctx context.Context, eventID *uint) (dto.StaffPerformanceResponse, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.staff_performance")
	defer span.End()

	staff, err := s.users.ListByRole(ctx, models.RoleUser)
	if err != nil {
		span.RecordError(err)
		return dto.StaffPerformanceResponse{}, err
	}

	rows, err := s.analytics.ActorLocationCounts(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "actor_location_counts_failed")
		return dto.StaffPerformanceResponse{}, err
	}

	type actorStats struct {
		count     int64
		locations map[string]struct{}
	}
	byActor := make(map[uint]*actorStats, len(rows))
	for _, row := range rows {
		stats, ok := byActor[row.ActorID]
		if !ok {
			stats = &actorStats{locations: make(map[string]struct{})}
			byActor[row.ActorID] = stats
		}
		stats.count += row.Count
		if row.Location != "" {
			stats.locations[row.Location] = struct{}{}
		}
	}

	entries := make([]dto.StaffPerformanceEntry, 0, len(staff))
	for _, member := range staff {
		entry := dto.StaffPerformanceEntry{
			UserID:    member.ID,
			Name:      member.Name,
			Locations: []string{},
		}
		if stats, ok := byActor[member.ID]; ok {
			entry.CheckIns = stats.count
			for location := range stats.locations {
				entry.Locations = append(entry.Locations, location)
			}
			sort.Strings(entry.Locations)
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CheckIns > entries[j].CheckIns
	})

	return dto.StaffPerformanceResponse{EventID: eventID, Staff: entries}, nil
}

// Overview aggregates over every event. Participant-based figures count all
// directory rows here, not just those with ledger rows; the per-event
// statistics use the narrower definition.
func (s *analyticsService) Overview(ctx context.Context) (dto.OverviewResponse, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.overview")
	defer span.End()

	totalEvents, err := s.events.Count(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.OverviewResponse{}, err
	}
	totalCheckIns, err := s.checkIns.Count(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.OverviewResponse{}, err
	}
	participants, err := s.analytics.ListAllParticipants(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_participants_failed")
		return dto.OverviewResponse{}, err
	}

	return dto.OverviewResponse{
		TotalEvents:       totalEvents,
		TotalCheckIns:     totalCheckIns,
		TotalParticipants: int64(len(participants)),
		Categories:        buildCategories(participants),
		Gender:            s.buildGender(participants),
		AgeGroups:         s.buildAgeGroups(participants),
	}, nil
}

func (s *analyticsService) authorize(ctx context.Context, actor models.User, eventID uint) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	if !CanAccessEvent(event, actor) {
		return ErrAccessDenied
	}
	return nil
}

// buildCategories partitions distinct participants by their origin flags.
// NULL and false flags are indistinguishable: "not true" means false-bucket.
func buildCategories(participants []models.Participant) dto.CategoryCounts {
	counts := dto.CategoryCounts{}
	for _, p := range participants {
		if p.IsInvited {
			counts.Invited++
			if p.IsRegisteredVoter {
				counts.InvitedRegistered++
			} else {
				counts.InvitedNotRegistered++
			}
		} else if p.IsRegisteredVoter {
			counts.RegisteredWalkIn++
		} else {
			counts.AdultPopulation++
		}

		if p.IsRegisteredVoter {
			counts.TotalRegistered++
		} else {
			counts.TotalNotRegistered++
		}
	}
	return counts
}

func (s *analyticsService) buildGender(participants []models.Participant) []dto.DimensionCount {
	counts := map[string]int64{}
	for _, p := range participants {
		counts[normalizeSex(p.Sex)]++
	}
	return orderedCounts(counts, genderOrder)
}

func (s *analyticsService) buildAgeGroups(participants []models.Participant) []dto.DimensionCount {
	today := models.DateOf(s.now(), s.location)
	counts := map[string]int64{}
	for _, p := range participants {
		bucket := ageBucket(p.DateOfBirth, today)
		if bucket == "" {
			continue
		}
		counts[bucket]++
	}
	return orderedCounts(counts, ageGroupOrder)
}

// orderedCounts emits buckets in their fixed order, dropping zero counts.
func orderedCounts(counts map[string]int64, order []string) []dto.DimensionCount {
	result := make([]dto.DimensionCount, 0, len(order))
	for _, name := range order {
		if count := counts[name]; count > 0 {
			result = append(result, dto.DimensionCount{Name: name, Count: count})
		}
	}
	return result
}

func normalizeSex(value string) string {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "M", "MALE":
		return sexMale
	case "F", "FEMALE":
		return sexFemale
	default:
		return notStated
	}
}

// ageBucket classifies a participant by age at the reference date. Minors are
// excluded from the output entirely; an unknown birth date is NOT STATED.
func ageBucket(dateOfBirth *models.CalendarDate, today models.CalendarDate) string {
	if dateOfBirth == nil || dateOfBirth.IsZero() {
		return notStated
	}

	age := dateOfBirth.AgeAt(today)
	switch {
	case age < adultEligAge:
		return ""
	case age <= 27:
		return "18-27"
	case age <= 35:
		return "27-35"
	case age <= 50:
		return "35-50"
	case age <= 64:
		return "50-64"
	default:
		return "65+"
	}
}
