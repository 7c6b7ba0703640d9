package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/checkin-go-api/internal/dto"
	"github.com/noah-isme/checkin-go-api/internal/models"
	"github.com/noah-isme/checkin-go-api/internal/observability"
	"github.com/noah-isme/checkin-go-api/internal/repository"
)

// ErrDuplicateCheckIn indicates the participant already has a ledger row for
// the event on the current calendar day. It is a business outcome, not an
// internal failure.
var ErrDuplicateCheckIn = errors.New("participant already checked in today")

// CheckInSubject is the NATS subject successful check-ins are announced on.
const CheckInSubject = "checkin.recorded"

// CheckInService runs the guarded insert-or-reject transaction and serves
// ledger reads.
type CheckInService interface {
	CheckIn(ctx context.Context, actor models.User, payload dto.CheckInRequest) (dto.CheckInResponse, error)
	ListByEventAndDate(ctx context.Context, actor models.User, eventID uint, date models.CalendarDate) (dto.CheckInListResponse, error)
	ListByEvent(ctx context.Context, actor models.User, eventID uint) (dto.CheckInListResponse, error)
}

type checkInService struct {
	checkIns     repository.CheckInRepository
	participants repository.ParticipantRepository
	events       repository.EventRepository
	cache        *redis.Client
	nats         *nats.Conn
	validator    *validator.Validate
	logger       zerolog.Logger
	tracer       trace.Tracer
	location     *time.Location
	now          func() time.Time
}

// NewCheckInService constructs the check-in service. The location decides
// which calendar day a check-in counts for.
func NewCheckInService(
	checkIns repository.CheckInRepository,
	participants repository.ParticipantRepository,
	events repository.EventRepository,
	cache *redis.Client,
	natsConn *nats.Conn,
	validate *validator.Validate,
	location *time.Location,
	logger zerolog.Logger,
) CheckInService {
	if location == nil {
		location = time.UTC
	}

	return &checkInService{
		checkIns:     checkIns,
		participants: participants,
		events:       events,
		cache:        cache,
		nats:         natsConn,
		validator:    validate,
		logger:       logger.With().Str("component", "checkin_service").Logger(),
		tracer:       otel.Tracer("github.com/noah-isme/checkin-go-api/internal/service/checkin"),
		location:     location,
		now:          time.Now,
	}
}

type checkInEvent struct {
	CheckIn     dto.CheckInRecord   `json:"checkIn"`
	Participant dto.ParticipantLite `json:"participant"`
	RecordedAt  time.Time           `json:"recordedAt"`
}

func (s *checkInService) CheckIn(ctx context.Context, actor models.User, payload dto.CheckInRequest) (dto.CheckInResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CheckInResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "checkin.transaction", trace.WithAttributes(
		attribute.Int("event.id", int(payload.EventID)),
	))
	defer span.End()

	event, err := s.events.GetByID(ctx, payload.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.CheckIns().WithLabelValues("event_not_found").Inc()
			return dto.CheckInResponse{}, ErrEventNotFound
		}
		span.RecordError(err)
		return dto.CheckInResponse{}, err
	}

	if !CanAccessEvent(event, actor) {
		observability.CheckIns().WithLabelValues("denied").Inc()
		return dto.CheckInResponse{}, ErrAccessDenied
	}

	participant, err := s.participants.GetByEventAndIDNumber(ctx, payload.EventID, payload.IDNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.CheckIns().WithLabelValues("participant_not_found").Inc()
			return dto.CheckInResponse{}, ErrParticipantNotFound
		}
		span.RecordError(err)
		return dto.CheckInResponse{}, err
	}

	now := s.now()
	today := models.DateOf(now, s.location)
	span.SetAttributes(attribute.String("checkin.date", today.String()))

	// Fast path: reject known duplicates before touching the unique index.
	exists, err := s.checkIns.Exists(ctx, participant.ID, event.ID, today)
	if err != nil {
		span.RecordError(err)
		return dto.CheckInResponse{}, err
	}
	if exists {
		observability.CheckIns().WithLabelValues("duplicate").Inc()
		return dto.CheckInResponse{}, ErrDuplicateCheckIn
	}

	log := models.CheckInLog{
		ParticipantID: participant.ID,
		EventID:       event.ID,
		CheckInDate:   today,
		CheckedInAt:   now,
	}
	if actor.ID != 0 {
		actorID := actor.ID
		log.CheckedInByID = &actorID
	}

	if err := s.checkIns.Create(ctx, &log); err != nil {
		// Two racing requests can both pass the existence check; the unique
		// index rejects the loser and the outcome is the same duplicate.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.CheckIns().WithLabelValues("duplicate").Inc()
			return dto.CheckInResponse{}, ErrDuplicateCheckIn
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "ledger_insert_failed")
		return dto.CheckInResponse{}, err
	}

	observability.CheckIns().WithLabelValues("accepted").Inc()

	response := dto.CheckInResponse{
		CheckIn:     dto.NewCheckInRecord(log),
		Participant: dto.NewParticipantLite(participant),
	}

	s.invalidateStats(ctx, event.ID)
	s.publish(ctx, response)

	s.logger.Info().
		Uint("event_id", event.ID).
		Uint("participant_id", participant.ID).
		Str("check_in_date", today.String()).
		Msg("check-in recorded")

	return response, nil
}

func (s *checkInService) ListByEventAndDate(ctx context.Context, actor models.User, eventID uint, date models.CalendarDate) (dto.CheckInListResponse, error) {
	if err := s.authorize(ctx, actor, eventID); err != nil {
		return dto.CheckInListResponse{}, err
	}

	logs, err := s.checkIns.ListByEventAndDate(ctx, eventID, date)
	if err != nil {
		return dto.CheckInListResponse{}, err
	}
	return dto.NewCheckInListResponse(logs), nil
}

func (s *checkInService) ListByEvent(ctx context.Context, actor models.User, eventID uint) (dto.CheckInListResponse, error) {
	if err := s.authorize(ctx, actor, eventID); err != nil {
		return dto.CheckInListResponse{}, err
	}

	logs, err := s.checkIns.ListByEvent(ctx, eventID)
	if err != nil {
		return dto.CheckInListResponse{}, err
	}
	return dto.NewCheckInListResponse(logs), nil
}

func (s *checkInService) authorize(ctx context.Context, actor models.User, eventID uint) error {
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

func (s *checkInService) invalidateStats(ctx context.Context, eventID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statsCacheKey(eventID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("event_id", eventID).Msg("failed to invalidate statistics cache")
	}
}

func (s *checkInService) publish(ctx context.Context, response dto.CheckInResponse) {
	if s.nats == nil {
		return
	}

	payload, err := json.Marshal(checkInEvent{
		CheckIn:     response.CheckIn,
		Participant: response.Participant,
		RecordedAt:  s.now(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode check-in event")
		return
	}

	// Fire-and-forget: notification delivery never gates ledger success.
	if err := s.nats.Publish(CheckInSubject, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish check-in event")
	}
}
