package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/checkin-go-api/internal/dto"
	"github.com/noah-isme/checkin-go-api/internal/models"
	"github.com/noah-isme/checkin-go-api/internal/repository"
)

// ErrEventNotFound indicates an event could not be found.
var ErrEventNotFound = errors.New("event not found")

// ErrNoAssignableUsers indicates none of the requested users exist.
var ErrNoAssignableUsers = errors.New("no assignable users found")

// EventService orchestrates event lifecycle and staff assignment.
type EventService interface {
	Create(ctx context.Context, actor models.User, payload dto.EventCreateRequest) (dto.EventResponse, error)
	List(ctx context.Context, actor models.User) ([]dto.EventResponse, error)
	Get(ctx context.Context, actor models.User, id uint) (dto.EventDetailResponse, error)
	Delete(ctx context.Context, actor models.User, id uint) error
	AssignUsers(ctx context.Context, actor models.User, eventID uint, payload dto.EventAssignRequest) error
}

type eventService struct {
	events       repository.EventRepository
	participants repository.ParticipantRepository
	checkIns     repository.CheckInRepository
	users        repository.UserRepository
	validator    *validator.Validate
	logger       zerolog.Logger
}

// NewEventService constructs an EventService instance.
func NewEventService(
	events repository.EventRepository,
	participants repository.ParticipantRepository,
	checkIns repository.CheckInRepository,
	users repository.UserRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) EventService {
	return &eventService{
		events:       events,
		participants: participants,
		checkIns:     checkIns,
		users:        users,
		validator:    validate,
		logger:       logger.With().Str("component", "event_service").Logger(),
	}
}

func (s *eventService) Create(ctx context.Context, actor models.User, payload dto.EventCreateRequest) (dto.EventResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EventResponse{}, err
	}

	event := models.Event{
		EventName:   payload.EventName,
		Location:    payload.Location,
		CreatedByID: actor.ID,
	}
	if payload.Date != nil {
		date, err := models.ParseCalendarDate(*payload.Date)
		if err != nil {
			return dto.EventResponse{}, err
		}
		event.Date = &date
	}

	if err := s.events.Create(ctx, &event); err != nil {
		return dto.EventResponse{}, err
	}

	s.logger.Info().Uint("event_id", event.ID).Uint("created_by", actor.ID).Msg("event created")

	return dto.NewEventResponse(event), nil
}

// List returns the events visible to the actor: all for a super-admin, the
// admin's own, or the owning admin's for a plain user. A user without an
// admin assignment sees nothing.
func (s *eventService) List(ctx context.Context, actor models.User) ([]dto.EventResponse, error) {
	switch actor.Role {
	case models.RoleSuperAdmin:
		events, err := s.events.List(ctx)
		if err != nil {
			return nil, err
		}
		return dto.NewEventResponseSlice(events), nil
	case models.RoleAdmin:
		events, err := s.events.ListByCreator(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		return dto.NewEventResponseSlice(events), nil
	case models.RoleUser:
		if actor.AdminID == nil {
			return []dto.EventResponse{}, nil
		}
		events, err := s.events.ListByCreator(ctx, *actor.AdminID)
		if err != nil {
			return nil, err
		}
		return dto.NewEventResponseSlice(events), nil
	default:
		return []dto.EventResponse{}, nil
	}
}

func (s *eventService) Get(ctx context.Context, actor models.User, id uint) (dto.EventDetailResponse, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EventDetailResponse{}, ErrEventNotFound
		}
		return dto.EventDetailResponse{}, err
	}

	if !CanAccessEvent(event, actor) {
		return dto.EventDetailResponse{}, ErrAccessDenied
	}

	totalParticipants, err := s.participants.CountByEvent(ctx, id)
	if err != nil {
		return dto.EventDetailResponse{}, err
	}
	totalCheckIns, err := s.checkIns.CountByEvent(ctx, id)
	if err != nil {
		return dto.EventDetailResponse{}, err
	}

	return dto.EventDetailResponse{
		EventResponse:     dto.NewEventResponse(event),
		TotalParticipants: totalParticipants,
		TotalCheckIns:     totalCheckIns,
	}, nil
}

func (s *eventService) Delete(ctx context.Context, actor models.User, id uint) error {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}

	if !CanDeleteEvent(event, actor) {
		return ErrAccessDenied
	}

	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("event_id", id).Uint("deleted_by", actor.ID).Msg("event deleted")

	return nil
}

func (s *eventService) AssignUsers(ctx context.Context, actor models.User, eventID uint, payload dto.EventAssignRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}

	if !CanDeleteEvent(event, actor) {
		return ErrAccessDenied
	}

	users, err := s.users.ListByIDs(ctx, payload.UserIDs)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return ErrNoAssignableUsers
	}

	if err := s.events.AssignUsers(ctx, eventID, users); err != nil {
		return err
	}

	s.logger.Info().Uint("event_id", eventID).Int("users", len(users)).Msg("staff assigned to event")

	return nil
}
