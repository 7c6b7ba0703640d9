package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/checkin-go-api/internal/models"
)

// ParticipantRepository defines data operations for the participant directory.
type ParticipantRepository interface {
	GetByEventAndIDNumber(ctx context.Context, eventID uint, idNumber string) (models.Participant, error)
	ListByEvent(ctx context.Context, eventID uint) ([]models.Participant, error)
	// Upsert creates the participant or, when (event_id, id_number) already
	// exists, merges the demographic fields into the existing row. Returns
	// true when a new row was created.
	Upsert(ctx context.Context, participant *models.Participant) (bool, error)
	CountByEvent(ctx context.Context, eventID uint) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type participantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository instantiates the repository.
func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) GetByEventAndIDNumber(ctx context.Context, eventID uint, idNumber string) (models.Participant, error) {
	var participant models.Participant
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Where("id_number = ?", idNumber).
		First(&participant).Error; err != nil {
		return models.Participant{}, err
	}
	return participant, nil
}

func (r *participantRepository) ListByEvent(ctx context.Context, eventID uint) ([]models.Participant, error) {
	var participants []models.Participant
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *participantRepository) Upsert(ctx context.Context, participant *models.Participant) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Participant
		query := tx.Where("id_number = ?", participant.IDNumber)
		if participant.EventID != nil {
			query = query.Where("event_id = ?", *participant.EventID)
		} else {
			query = query.Where("event_id IS NULL")
		}

		err := query.First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			return tx.Create(participant).Error
		}
		if err != nil {
			return err
		}

		merged := mergeParticipant(existing, *participant)
		if err := tx.Save(&merged).Error; err != nil {
			return err
		}
		*participant = merged
		return nil
	})
	return created, err
}

// mergeParticipant overlays non-empty incoming fields onto the stored row.
// Boolean flags only ever widen: a registry match or invite-list membership
// is never revoked by a later plain submission.
func mergeParticipant(existing, incoming models.Participant) models.Participant {
	if incoming.Name != "" {
		existing.Name = incoming.Name
	}
	if incoming.DateOfBirth != nil {
		existing.DateOfBirth = incoming.DateOfBirth
	}
	if incoming.Sex != "" {
		existing.Sex = incoming.Sex
	}
	if incoming.County != nil {
		existing.County = incoming.County
	}
	if incoming.Constituency != nil {
		existing.Constituency = incoming.Constituency
	}
	if incoming.Ward != nil {
		existing.Ward = incoming.Ward
	}
	if incoming.PollingCenter != nil {
		existing.PollingCenter = incoming.PollingCenter
	}
	if incoming.Group != nil {
		existing.Group = incoming.Group
	}
	existing.IsRegisteredVoter = existing.IsRegisteredVoter || incoming.IsRegisteredVoter
	existing.IsInvited = existing.IsInvited || incoming.IsInvited
	return existing
}

func (r *participantRepository) CountByEvent(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Participant{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count, err
}

func (r *participantRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Participant{}).Count(&count).Error
	return count, err
}
