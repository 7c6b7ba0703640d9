package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/checkin-go-api/internal/dto"
	"github.com/noah-isme/checkin-go-api/internal/models"
	"github.com/noah-isme/checkin-go-api/internal/repository"
)

func newAnalyticsService(db *gorm.DB, cache *redis.Client) *analyticsService {
	svc := NewAnalyticsService(
		repository.NewAnalyticsRepository(db),
		repository.NewCheckInRepository(db),
		repository.NewParticipantRepository(db),
		repository.NewEventRepository(db),
		repository.NewUserRepository(db),
		cache,
		time.Minute,
		time.UTC,
		zerolog.Nop(),
	).(*analyticsService)
	svc.now = func() time.Time { return time.Date(2026, time.August, 26, 12, 0, 0, 0, time.UTC) }
	return svc
}

func dobPointer(year int, month time.Month, day int) *models.CalendarDate {
	date := models.NewCalendarDate(year, month, day)
	return &date
}

func checkIn(t *testing.T, db *gorm.DB, participantID, eventID uint, actorID *uint, day models.CalendarDate) {
	t.Helper()
	require.NoError(t, db.Create(&models.CheckInLog{
		ParticipantID: participantID,
		EventID:       eventID,
		CheckedInByID: actorID,
		CheckInDate:   day,
		CheckedInAt:   day.Time(),
	}).Error)
}

func seedAnalyticsFixture(t *testing.T, db *gorm.DB) (models.User, models.Event) {
	t.Helper()

	admin := models.User{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}
	seedUser(t, db, &admin)
	event := models.Event{EventName: "Forum", Location: "Nakuru Town Hall", CreatedByID: admin.ID}
	seedEvent(t, db, &event)

	invited := models.Participant{
		IDNumber: "100", EventID: &event.ID, Name: "Invited Registered",
		DateOfBirth: dobPointer(1990, time.May, 20), Sex: "M",
		County: stringPointer("Nakuru"), Constituency: stringPointer("Naivasha"),
		IsRegisteredVoter: true, IsInvited: true,
	}
	seedParticipant(t, db, &invited)

	walkIn := models.Participant{
		IDNumber: "200", EventID: &event.ID, Name: "Registered Walk-in",
		DateOfBirth: dobPointer(2000, time.September, 1), Sex: "female",
		County:            stringPointer("Nakuru"), Constituency: stringPointer("Nakuru East"),
		IsRegisteredVoter: true,
	}
	seedParticipant(t, db, &walkIn)

	adHoc := models.Participant{
		IDNumber: "300", EventID: &event.ID, Name: "Ad-hoc",
		County: stringPointer("Kisumu"),
	}
	seedParticipant(t, db, &adHoc)

	absent := models.Participant{
		IDNumber: "400", EventID: &event.ID, Name: "Never Checked In",
		County: stringPointer("Mombasa"), IsInvited: true,
	}
	seedParticipant(t, db, &absent)

	day := models.NewCalendarDate(2026, time.August, 25)
	checkIn(t, db, invited.ID, event.ID, nil, day)
	checkIn(t, db, walkIn.ID, event.ID, nil, day)
	checkIn(t, db, adHoc.ID, event.ID, nil, day)
	// A second day for one participant: distinct counts must not double.
	checkIn(t, db, invited.ID, event.ID, nil, models.NewCalendarDate(2026, time.August, 26))

	return admin, event
}

func TestEventStatisticsAggregates(t *testing.T) {
	db := openTestDB(t)
	admin, event := seedAnalyticsFixture(t, db)

	svc := newAnalyticsService(db, nil)

	stats, err := svc.EventStatistics(context.Background(), admin, event.ID)
	require.NoError(t, err)
	require.Equal(t, event.ID, stats.EventID)
	require.EqualValues(t, 4, stats.TotalCheckIns)
	require.EqualValues(t, 4, stats.TotalParticipants)
	require.EqualValues(t, 3, stats.CheckedIn)
	require.False(t, stats.CacheHit)

	require.EqualValues(t, 1, stats.Categories.Invited)
	require.EqualValues(t, 1, stats.Categories.InvitedRegistered)
	require.EqualValues(t, 0, stats.Categories.InvitedNotRegistered)
	require.EqualValues(t, 1, stats.Categories.RegisteredWalkIn)
	require.EqualValues(t, 1, stats.Categories.AdultPopulation)
	require.EqualValues(t, 2, stats.Categories.TotalRegistered)
	require.EqualValues(t, 1, stats.Categories.TotalNotRegistered)

	require.Equal(t, []dto.DimensionCount{
		{Name: "MALE", Count: 1},
		{Name: "FEMALE", Count: 1},
		{Name: "NOT STATED", Count: 1},
	}, stats.Gender)

	// 1990-05-20 is 36 on the reference date, 2000-09-01 still 25; the
	// participant without a birth date is NOT STATED.
	require.Equal(t, []dto.DimensionCount{
		{Name: "18-27", Count: 1},
		{Name: "35-50", Count: 1},
		{Name: "NOT STATED", Count: 1},
	}, stats.AgeGroups)
}

func TestEventStatisticsCaching(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db := openTestDB(t)
	admin, event := seedAnalyticsFixture(t, db)

	svc := newAnalyticsService(db, cache)
	ctx := context.Background()

	first, err := svc.EventStatistics(ctx, admin, event.ID)
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	// New ledger rows are invisible until the cache entry is dropped.
	extra := models.Participant{IDNumber: "500", EventID: &event.ID, Name: "Late"}
	seedParticipant(t, db, &extra)
	checkIn(t, db, extra.ID, event.ID, nil, models.NewCalendarDate(2026, time.August, 26))

	second, err := svc.EventStatistics(ctx, admin, event.ID)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, first.TotalCheckIns, second.TotalCheckIns)

	mini.Del(statsCacheKey(event.ID))

	third, err := svc.EventStatistics(ctx, admin, event.ID)
	require.NoError(t, err)
	require.False(t, third.CacheHit)
	require.EqualValues(t, first.TotalCheckIns+1, third.TotalCheckIns)
}

func TestHierarchyBreakdown(t *testing.T) {
	db := openTestDB(t)
	admin, event := seedAnalyticsFixture(t, db)

	svc := newAnalyticsService(db, nil)
	ctx := context.Background()

	counties, err := svc.Hierarchy(ctx, admin, event.ID, "County", "")
	require.NoError(t, err)
	require.Equal(t, "county", counties.Level)
	require.Equal(t, []dto.DimensionCount{
		{Name: "Nakuru", Count: 2},
		{Name: "Kisumu", Count: 1},
	}, counties.Breakdown)

	constituencies, err := svc.Hierarchy(ctx, admin, event.ID, "constituency", "Nakuru")
	require.NoError(t, err)
	require.Len(t, constituencies.Breakdown, 2)
	for _, row := range constituencies.Breakdown {
		require.EqualValues(t, 1, row.Count)
	}

	_, err = svc.Hierarchy(ctx, admin, event.ID, "postcode", "")
	require.ErrorIs(t, err, ErrInvalidHierarchyLevel)
}

func TestStaffPerformance(t *testing.T) {
	db := openTestDB(t)
	admin, event := seedAnalyticsFixture(t, db)

	busy := models.User{Name: "Busy", Email: "busy@example.com", Role: models.RoleUser, AdminID: &admin.ID}
	seedUser(t, db, &busy)
	idle := models.User{Name: "Idle", Email: "idle@example.com", Role: models.RoleUser, AdminID: &admin.ID}
	seedUser(t, db, &idle)

	extra := models.Participant{IDNumber: "600", EventID: &event.ID, Name: "Extra"}
	seedParticipant(t, db, &extra)
	day := models.NewCalendarDate(2026, time.August, 26)
	checkIn(t, db, extra.ID, event.ID, &busy.ID, day)

	svc := newAnalyticsService(db, nil)

	performance, err := svc.StaffPerformance(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, performance.Staff, 2)

	require.Equal(t, busy.ID, performance.Staff[0].UserID)
	require.EqualValues(t, 1, performance.Staff[0].CheckIns)
	require.Equal(t, []string{"Nakuru Town Hall"}, performance.Staff[0].Locations)

	require.Equal(t, idle.ID, performance.Staff[1].UserID)
	require.EqualValues(t, 0, performance.Staff[1].CheckIns)
	require.Empty(t, performance.Staff[1].Locations)
}

func TestOverviewCountsAllParticipants(t *testing.T) {
	db := openTestDB(t)
	_, _ = seedAnalyticsFixture(t, db)

	svc := newAnalyticsService(db, nil)

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, overview.TotalEvents)
	require.EqualValues(t, 4, overview.TotalCheckIns)
	// The never-checked-in participant still counts at the global level.
	require.EqualValues(t, 4, overview.TotalParticipants)
	require.EqualValues(t, 2, overview.Categories.Invited)
}

func TestAnalyticsScoping(t *testing.T) {
	db := openTestDB(t)
	_, event := seedAnalyticsFixture(t, db)

	other := models.User{Name: "Other", Email: "otheradmin@example.com", Role: models.RoleAdmin}
	seedUser(t, db, &other)

	svc := newAnalyticsService(db, nil)
	ctx := context.Background()

	_, err := svc.EventStatistics(ctx, other, event.ID)
	require.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.Hierarchy(ctx, other, event.ID, "county", "")
	require.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.EventStatistics(ctx, other, event.ID+100)
	require.ErrorIs(t, err, ErrEventNotFound)
}
