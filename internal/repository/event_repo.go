package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/checkin-go-api/internal/models"
)

// EventRepository defines data operations for events.
type EventRepository interface {
	List(ctx context.Context) ([]models.Event, error)
	ListByCreator(ctx context.Context, creatorID uint) ([]models.Event, error)
	GetByID(ctx context.Context, id uint) (models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uint) error
	AssignUsers(ctx context.Context, eventID uint, users []models.User) error
	Count(ctx context.Context) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository instantiates the repository.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) List(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) ListByCreator(ctx context.Context, creatorID uint) ([]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).
		Where("created_by_id = ?", creatorID).
		Order("created_at DESC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id uint) (models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return models.Event{}, err
	}
	return event, nil
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// Delete removes the event and, through the schema's cascade rules, its
// participants and ledger rows.
func (r *eventRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Event{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *eventRepository) AssignUsers(ctx context.Context, eventID uint, users []models.User) error {
	event := models.Event{ID: eventID}
	return r.db.WithContext(ctx).Model(&event).Association("AssignedUsers").Append(users)
}

func (r *eventRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Event{}).Count(&count).Error
	return count, err
}
