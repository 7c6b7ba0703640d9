package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/checkin-go-api/internal/models"
)

// CheckInRepository defines data operations for the check-in ledger.
//
// Create surfaces gorm.ErrDuplicatedKey when the unique index on
// (participant_id, event_id, check_in_date) rejects the row; error
// translation is enabled at connect time.
type CheckInRepository interface {
	Create(ctx context.Context, log *models.CheckInLog) error
	Exists(ctx context.Context, participantID, eventID uint, date models.CalendarDate) (bool, error)
	ListByEvent(ctx context.Context, eventID uint) ([]models.CheckInLog, error)
	ListByEventAndDate(ctx context.Context, eventID uint, date models.CalendarDate) ([]models.CheckInLog, error)
	CountByEvent(ctx context.Context, eventID uint) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type checkInRepository struct {
	db *gorm.DB
}

// NewCheckInRepository instantiates the repository.
func NewCheckInRepository(db *gorm.DB) CheckInRepository {
	return &checkInRepository{db: db}
}

func (r *checkInRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.CheckInLog{}).
		Preload("Participant").
		Preload("CheckedInBy")
}

func (r *checkInRepository) Create(ctx context.Context, log *models.CheckInLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *checkInRepository) Exists(ctx context.Context, participantID, eventID uint, date models.CalendarDate) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CheckInLog{}).
		Where("participant_id = ?", participantID).
		Where("event_id = ?", eventID).
		Where("check_in_date = ?", date).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *checkInRepository) ListByEvent(ctx context.Context, eventID uint) ([]models.CheckInLog, error) {
	var logs []models.CheckInLog
	if err := r.baseQuery(ctx).
		Where("event_id = ?", eventID).
		Order("checked_in_at DESC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *checkInRepository) ListByEventAndDate(ctx context.Context, eventID uint, date models.CalendarDate) ([]models.CheckInLog, error) {
	var logs []models.CheckInLog
	if err := r.baseQuery(ctx).
		Where("event_id = ?", eventID).
		Where("check_in_date = ?", date).
		Order("checked_in_at DESC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *checkInRepository) CountByEvent(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CheckInLog{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count, err
}

func (r *checkInRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CheckInLog{}).Count(&count).Error
	return count, err
}
