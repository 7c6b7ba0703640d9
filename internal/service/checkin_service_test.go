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

type checkInFixture struct {
	db          *gorm.DB
	service     *checkInService
	admin       models.User
	staff       models.User
	event       models.Event
	participant models.Participant
}

func newCheckInFixture(t *testing.T, cache *redis.Client) *checkInFixture {
	t.Helper()

	db := openTestDB(t)

	admin := models.User{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}
	seedUser(t, db, &admin)
	staff := models.User{Name: "Staff", Email: "staff@example.com", Role: models.RoleUser, AdminID: &admin.ID}
	seedUser(t, db, &staff)

	event := models.Event{EventName: "County Forum", Location: "Nakuru", CreatedByID: admin.ID}
	seedEvent(t, db, &event)

	participant := models.Participant{IDNumber: "12345678", EventID: &event.ID, Name: "Jane Wanjiku"}
	seedParticipant(t, db, &participant)

	svc := NewCheckInService(
		repository.NewCheckInRepository(db),
		repository.NewParticipantRepository(db),
		repository.NewEventRepository(db),
		cache,
		nil,
		newTestValidator(),
		time.FixedZone("EAT", 3*60*60),
		zerolog.Nop(),
	).(*checkInService)

	return &checkInFixture{
		db:          db,
		service:     svc,
		admin:       admin,
		staff:       staff,
		event:       event,
		participant: participant,
	}
}

func TestCheckInRecordsLedgerRow(t *testing.T) {
	fx := newCheckInFixture(t, nil)

	// 22:30 UTC already counts for the next calendar day three hours east.
	instant := time.Date(2026, time.March, 1, 22, 30, 0, 0, time.UTC)
	fx.service.now = func() time.Time { return instant }

	response, err := fx.service.CheckIn(context.Background(), fx.staff, dto.CheckInRequest{
		EventID:  fx.event.ID,
		IDNumber: fx.participant.IDNumber,
	})
	require.NoError(t, err)
	require.Equal(t, fx.participant.ID, response.CheckIn.ParticipantID)
	require.Equal(t, fx.event.ID, response.CheckIn.EventID)
	require.Equal(t, "2026-03-02", response.CheckIn.CheckInDate.String())
	require.Equal(t, fx.participant.IDNumber, response.Participant.IDNumber)

	var log models.CheckInLog
	require.NoError(t, fx.db.First(&log).Error)
	require.Equal(t, fx.participant.ID, log.ParticipantID)
	require.NotNil(t, log.CheckedInByID)
	require.Equal(t, fx.staff.ID, *log.CheckedInByID)
	require.Equal(t, "2026-03-02", log.CheckInDate.String())
}

func TestCheckInRejectsSameDayDuplicate(t *testing.T) {
	fx := newCheckInFixture(t, nil)

	morning := time.Date(2026, time.March, 2, 6, 0, 0, 0, time.UTC)
	fx.service.now = func() time.Time { return morning }

	payload := dto.CheckInRequest{EventID: fx.event.ID, IDNumber: fx.participant.IDNumber}

	_, err := fx.service.CheckIn(context.Background(), fx.staff, payload)
	require.NoError(t, err)

	// Same day, hours later: rejected regardless of elapsed time.
	evening := time.Date(2026, time.March, 2, 15, 0, 0, 0, time.UTC)
	fx.service.now = func() time.Time { return evening }

	_, err = fx.service.CheckIn(context.Background(), fx.staff, payload)
	require.ErrorIs(t, err, ErrDuplicateCheckIn)

	var count int64
	require.NoError(t, fx.db.Model(&models.CheckInLog{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCheckInAllowsNextDay(t *testing.T) {
	fx := newCheckInFixture(t, nil)

	payload := dto.CheckInRequest{EventID: fx.event.ID, IDNumber: fx.participant.IDNumber}

	fx.service.now = func() time.Time { return time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC) }
	_, err := fx.service.CheckIn(context.Background(), fx.staff, payload)
	require.NoError(t, err)

	fx.service.now = func() time.Time { return time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC) }
	_, err = fx.service.CheckIn(context.Background(), fx.staff, payload)
	require.NoError(t, err)

	var count int64
	require.NoError(t, fx.db.Model(&models.CheckInLog{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestCheckInUnknownEventAndParticipant(t *testing.T) {
	fx := newCheckInFixture(t, nil)

	_, err := fx.service.CheckIn(context.Background(), fx.staff, dto.CheckInRequest{
		EventID:  fx.event.ID + 100,
		IDNumber: fx.participant.IDNumber,
	})
	require.ErrorIs(t, err, ErrEventNotFound)

	_, err = fx.service.CheckIn(context.Background(), fx.staff, dto.CheckInRequest{
		EventID:  fx.event.ID,
		IDNumber: "00000000",
	})
	require.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestCheckInDeniedOutsideScope(t *testing.T) {
	fx := newCheckInFixture(t, nil)

	otherAdmin := models.User{Name: "Other", Email: "other@example.com", Role: models.RoleAdmin}
	seedUser(t, fx.db, &otherAdmin)
	outsider := models.User{Name: "Outsider", Email: "outsider@example.com", Role: models.RoleUser, AdminID: &otherAdmin.ID}
	seedUser(t, fx.db, &outsider)

	_, err := fx.service.CheckIn(context.Background(), outsider, dto.CheckInRequest{
		EventID:  fx.event.ID,
		IDNumber: fx.participant.IDNumber,
	})
	require.ErrorIs(t, err, ErrAccessDenied)
}

// raceCheckInRepo simulates the window where two requests both pass the
// existence check and the unique index decides.
type raceCheckInRepo struct {
	repository.CheckInRepository
}

func (r raceCheckInRepo) Exists(ctx context.Context, participantID, eventID uint, date models.CalendarDate) (bool, error) {
	return false, nil
}

func TestCheckInRaceLoserGetsDuplicate(t *testing.T) {
	fx := newCheckInFixture(t, nil)
	fx.service.checkIns = raceCheckInRepo{fx.service.checkIns}

	payload := dto.CheckInRequest{EventID: fx.event.ID, IDNumber: fx.participant.IDNumber}
	fx.service.now = func() time.Time { return time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC) }

	_, err := fx.service.CheckIn(context.Background(), fx.staff, payload)
	require.NoError(t, err)

	_, err = fx.service.CheckIn(context.Background(), fx.staff, payload)
	require.ErrorIs(t, err, ErrDuplicateCheckIn)

	var count int64
	require.NoError(t, fx.db.Model(&models.CheckInLog{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCheckInInvalidatesStatisticsCache(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	fx := newCheckInFixture(t, cache)

	key := statsCacheKey(fx.event.ID)
	require.NoError(t, mini.Set(key, `{"eventId":1}`))

	_, err = fx.service.CheckIn(context.Background(), fx.staff, dto.CheckInRequest{
		EventID:  fx.event.ID,
		IDNumber: fx.participant.IDNumber,
	})
	require.NoError(t, err)
	require.False(t, mini.Exists(key))
}

func TestCheckInValidatesPayload(t *testing.T) {
	fx := newCheckInFixture(t, nil)

	_, err := fx.service.CheckIn(context.Background(), fx.staff, dto.CheckInRequest{EventID: fx.event.ID})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrEventNotFound)
}
