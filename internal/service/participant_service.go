package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/checkin-go-api/internal/dto"
	"github.com/noah-isme/checkin-go-api/internal/models"
	"github.com/noah-isme/checkin-go-api/internal/repository"
	"github.com/noah-isme/checkin-go-api/pkg/registry"
)

// ErrParticipantNotFound indicates no participant matches the event and id
// number; the caller must register the participant first.
var ErrParticipantNotFound = errors.New("participant not found")

// ErrRegistryMiss indicates neither the directory nor the voter registry
// knows the id number.
var ErrRegistryMiss = errors.New("id number not found in voter registry")

// ErrInvalidImportFile indicates the uploaded import file is not CSV.
var ErrInvalidImportFile = errors.New("import file must be CSV")

const importMaxRowErrors = 20

// RegistryLookup is the slice of the registry client the directory needs.
type RegistryLookup interface {
	Lookup(ctx context.Context, idNumber string) (registry.Voter, error)
}

// ParticipantService manages the participant directory: registry-backed
// search, idempotent registration and bulk import.
type ParticipantService interface {
	Search(ctx context.Context, actor models.User, payload dto.ParticipantSearchRequest) (dto.ParticipantResponse, error)
	Register(ctx context.Context, actor models.User, payload dto.ParticipantCreateRequest) (dto.ParticipantResponse, error)
	ListByEvent(ctx context.Context, actor models.User, eventID uint) ([]dto.ParticipantResponse, error)
	Import(ctx context.Context, actor models.User, eventID uint, file *multipart.FileHeader) (dto.ImportSummary, error)
}

type participantService struct {
	participants repository.ParticipantRepository
	events       repository.EventRepository
	registry     RegistryLookup
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	logger       zerolog.Logger
}

// NewParticipantService constructs a ParticipantService instance. The
// registry lookup may be nil, in which case search misses stay misses.
func NewParticipantService(
	participants repository.ParticipantRepository,
	events repository.EventRepository,
	registryClient RegistryLookup,
	validate *validator.Validate,
	logger zerolog.Logger,
) ParticipantService {
	return &participantService{
		participants: participants,
		events:       events,
		registry:     registryClient,
		validator:    validate,
		sanitizer:    bluemonday.StrictPolicy(),
		logger:       logger.With().Str("component", "participant_service").Logger(),
	}
}

func (s *participantService) Search(ctx context.Context, actor models.User, payload dto.ParticipantSearchRequest) (dto.ParticipantResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ParticipantResponse{}, err
	}

	event, err := s.loadEvent(ctx, payload.EventID)
	if err != nil {
		return dto.ParticipantResponse{}, err
	}
	if !CanAccessEvent(event, actor) {
		return dto.ParticipantResponse{}, ErrAccessDenied
	}

	idNumber := strings.TrimSpace(payload.IDNumber)
	participant, err := s.participants.GetByEventAndIDNumber(ctx, event.ID, idNumber)
	if err == nil {
		return dto.NewParticipantResponse(participant), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ParticipantResponse{}, err
	}

	if s.registry == nil {
		return dto.ParticipantResponse{}, ErrParticipantNotFound
	}

	voter, err := s.registry.Lookup(ctx, idNumber)
	if err != nil {
		if errors.Is(err, registry.ErrVoterNotFound) {
			return dto.ParticipantResponse{}, ErrRegistryMiss
		}
		return dto.ParticipantResponse{}, err
	}

	candidate := s.participantFromVoter(event.ID, voter)
	if _, err := s.participants.Upsert(ctx, &candidate); err != nil {
		return dto.ParticipantResponse{}, err
	}

	s.logger.Info().Uint("event_id", event.ID).Uint("participant_id", candidate.ID).Msg("registry match registered")

	return dto.NewParticipantResponse(candidate), nil
}

func (s *participantService) Register(ctx context.Context, actor models.User, payload dto.ParticipantCreateRequest) (dto.ParticipantResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ParticipantResponse{}, err
	}

	event, err := s.loadEvent(ctx, payload.EventID)
	if err != nil {
		return dto.ParticipantResponse{}, err
	}
	if !CanAccessEvent(event, actor) {
		return dto.ParticipantResponse{}, ErrAccessDenied
	}

	eventID := event.ID
	participant := models.Participant{
		IDNumber:      strings.TrimSpace(payload.IDNumber),
		EventID:       &eventID,
		Name:          s.clean(payload.Name),
		Sex:           s.clean(payload.Sex),
		County:        s.cleanPtr(payload.County),
		Constituency:  s.cleanPtr(payload.Constituency),
		Ward:          s.cleanPtr(payload.Ward),
		PollingCenter: s.cleanPtr(payload.PollingCenter),
		Group:         s.cleanPtr(payload.Group),
		IsInvited:     payload.IsInvited,
	}
	if payload.DateOfBirth != nil {
		dob, err := models.ParseCalendarDate(*payload.DateOfBirth)
		if err != nil {
			return dto.ParticipantResponse{}, err
		}
		participant.DateOfBirth = &dob
	}

	created, err := s.participants.Upsert(ctx, &participant)
	if err != nil {
		return dto.ParticipantResponse{}, err
	}

	s.logger.Info().
		Uint("event_id", event.ID).
		Uint("participant_id", participant.ID).
		Bool("created", created).
		Msg("participant registered")

	return dto.NewParticipantResponse(participant), nil
}

func (s *participantService) ListByEvent(ctx context.Context, actor models.User, eventID uint) ([]dto.ParticipantResponse, error) {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !CanAccessEvent(event, actor) {
		return nil, ErrAccessDenied
	}

	participants, err := s.participants.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return dto.NewParticipantResponseSlice(participants), nil
}

// Import parses a CSV of invited participants and upserts each row. Column
// order: id_number,name,date_of_birth,sex,county,constituency,ward,
// polling_center,group. A header row is skipped when detected.
func (s *participantService) Import(ctx context.Context, actor models.User, eventID uint, file *multipart.FileHeader) (dto.ImportSummary, error) {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return dto.ImportSummary{}, err
	}
	if !CanDeleteEvent(event, actor) {
		return dto.ImportSummary{}, ErrAccessDenied
	}
	if file == nil {
		return dto.ImportSummary{}, ErrInvalidImportFile
	}

	reader, err := file.Open()
	if err != nil {
		return dto.ImportSummary{}, fmt.Errorf("failed to open import file: %w", err)
	}
	defer reader.Close()

	detected, err := mimetype.DetectReader(reader)
	if err != nil {
		return dto.ImportSummary{}, fmt.Errorf("failed to inspect import file: %w", err)
	}
	if !detected.Is("text/csv") && !detected.Is("text/plain") {
		return dto.ImportSummary{}, ErrInvalidImportFile
	}
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return dto.ImportSummary{}, fmt.Errorf("failed to rewind import file: %w", err)
	}

	summary := dto.ImportSummary{BatchID: uuid.NewString()}
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1

	line := 0
	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			summary.Skipped++
			s.noteImportError(&summary, line, err.Error())
			continue
		}
		if line == 1 && looksLikeHeader(record) {
			continue
		}

		participant, err := s.participantFromRecord(event.ID, record)
		if err != nil {
			summary.Skipped++
			s.noteImportError(&summary, line, err.Error())
			continue
		}

		created, err := s.participants.Upsert(ctx, &participant)
		if err != nil {
			summary.Skipped++
			s.noteImportError(&summary, line, err.Error())
			continue
		}
		if created {
			summary.Imported++
		} else {
			summary.Updated++
		}
	}

	s.logger.Info().
		Str("batch_id", summary.BatchID).
		Uint("event_id", event.ID).
		Int("imported", summary.Imported).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Msg("participant import completed")

	return summary, nil
}

func (s *participantService) loadEvent(ctx context.Context, eventID uint) (models.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Event{}, ErrEventNotFound
		}
		return models.Event{}, err
	}
	return event, nil
}

func (s *participantService) participantFromVoter(eventID uint, voter registry.Voter) models.Participant {
	participant := models.Participant{
		IDNumber:          strings.TrimSpace(voter.IDNumber),
		EventID:           &eventID,
		Name:              s.clean(voter.Name),
		Sex:               s.clean(voter.Sex),
		County:            s.cleanPtr(ptrOrNil(voter.County)),
		Constituency:      s.cleanPtr(ptrOrNil(voter.Constituency)),
		Ward:              s.cleanPtr(ptrOrNil(voter.Ward)),
		PollingCenter:     s.cleanPtr(ptrOrNil(voter.PollingCenter)),
		IsRegisteredVoter: true,
	}
	if dob, err := models.ParseCalendarDate(voter.DateOfBirth); err == nil {
		participant.DateOfBirth = &dob
	}
	return participant
}

func (s *participantService) participantFromRecord(eventID uint, record []string) (models.Participant, error) {
	field := func(index int) string {
		if index < len(record) {
			return strings.TrimSpace(record[index])
		}
		return ""
	}

	idNumber := field(0)
	name := field(1)
	if idNumber == "" || name == "" {
		return models.Participant{}, errors.New("id number and name are required")
	}

	participant := models.Participant{
		IDNumber:      idNumber,
		EventID:       &eventID,
		Name:          s.clean(name),
		Sex:           s.clean(field(3)),
		County:        s.cleanPtr(ptrOrNil(field(4))),
		Constituency:  s.cleanPtr(ptrOrNil(field(5))),
		Ward:          s.cleanPtr(ptrOrNil(field(6))),
		PollingCenter: s.cleanPtr(ptrOrNil(field(7))),
		Group:         s.cleanPtr(ptrOrNil(field(8))),
		IsInvited:     true,
	}

	if dobValue := field(2); dobValue != "" {
		dob, err := models.ParseCalendarDate(dobValue)
		if err != nil {
			return models.Participant{}, err
		}
		participant.DateOfBirth = &dob
	}

	return participant, nil
}

func (s *participantService) noteImportError(summary *dto.ImportSummary, line int, message string) {
	if len(summary.Errors) >= importMaxRowErrors {
		return
	}
	summary.Errors = append(summary.Errors, fmt.Sprintf("line %d: %s", line, message))
}

func (s *participantService) clean(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}

func (s *participantService) cleanPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := s.clean(*value)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

func ptrOrNil(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func looksLikeHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(record[0]))
	return first == "id_number" || first == "idnumber"
}
