package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/checkin-go-api/internal/models"
)

// DimensionRow is one grouped distinct-participant count.
type DimensionRow struct {
	Name  string
	Count int64
}

// ActorLocationRow is the raw material for staff performance: how many ledger
// rows an actor produced at each event location.
type ActorLocationRow struct {
	ActorID  uint
	Location string
	Count    int64
}

// Hierarchy levels accepted by breakdown queries, mapped to the participant
// column they group by.
var hierarchyColumns = map[string]string{
	"county":       "county",
	"constituency": "constituency",
	"ward":         "ward",
	"group":        "group_name",
}

// Parent dimension per level, for the optional parent-value filter.
var hierarchyParents = map[string]string{
	"constituency": "county",
	"ward":         "constituency",
	"group":        "ward",
}

// HierarchyColumn resolves a level name to its column, reporting whether the
// level is known. Only whitelisted columns ever reach the query builder.
func HierarchyColumn(level string) (string, bool) {
	column, ok := hierarchyColumns[level]
	return column, ok
}

// AnalyticsRepository supplies aggregate reads over the ledger and directory.
type AnalyticsRepository interface {
	// HierarchyBreakdown counts distinct checked-in participants per
	// non-empty value of the level's column, optionally filtered to a parent
	// dimension value, ordered by count descending.
	HierarchyBreakdown(ctx context.Context, eventID uint, level, parentName string) ([]DimensionRow, error)
	// ListCheckedInParticipants returns each participant of the event with at
	// least one ledger row, once.
	ListCheckedInParticipants(ctx context.Context, eventID uint) ([]models.Participant, error)
	ListAllParticipants(ctx context.Context) ([]models.Participant, error)
	// ActorLocationCounts groups ledger rows by acting user and event
	// location, optionally scoped to one event.
	ActorLocationCounts(ctx context.Context, eventID *uint) ([]ActorLocationRow, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository constructs the analytics repository.
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) HierarchyBreakdown(ctx context.Context, eventID uint, level, parentName string) ([]DimensionRow, error) {
	column, ok := HierarchyColumn(level)
	if !ok {
		return nil, fmt.Errorf("unknown hierarchy level %q", level)
	}

	query := r.db.WithContext(ctx).
		Table("participants").
		Select(fmt.Sprintf("participants.%s AS name, COUNT(DISTINCT participants.id) AS count", column)).
		Joins("JOIN check_in_logs ON check_in_logs.participant_id = participants.id AND check_in_logs.event_id = ?", eventID).
		Where("participants.event_id = ?", eventID).
		Where(fmt.Sprintf("participants.%s IS NOT NULL AND participants.%s <> ''", column, column))

	if parentName != "" {
		if parentLevel, ok := hierarchyParents[level]; ok {
			parentColumn := hierarchyColumns[parentLevel]
			query = query.Where(fmt.Sprintf("participants.%s = ?", parentColumn), parentName)
		}
	}

	var rows []DimensionRow
	if err := query.
		Group(fmt.Sprintf("participants.%s", column)).
		Order("count DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *analyticsRepository) ListCheckedInParticipants(ctx context.Context, eventID uint) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.db.WithContext(ctx).
		Model(&models.Participant{}).
		Distinct("participants.*").
		Joins("JOIN check_in_logs ON check_in_logs.participant_id = participants.id AND check_in_logs.event_id = ?", eventID).
		Where("participants.event_id = ?", eventID).
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *analyticsRepository) ListAllParticipants(ctx context.Context) ([]models.Participant, error) {
	var participants []models.Participant
	if err := r.db.WithContext(ctx).Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *analyticsRepository) ActorLocationCounts(ctx context.Context, eventID *uint) ([]ActorLocationRow, error) {
	query := r.db.WithContext(ctx).
		Table("check_in_logs").
		Select("check_in_logs.checked_in_by_id AS actor_id, events.location AS location, COUNT(check_in_logs.id) AS count").
		Joins("JOIN events ON events.id = check_in_logs.event_id").
		Where("check_in_logs.checked_in_by_id IS NOT NULL")

	if eventID != nil {
		query = query.Where("check_in_logs.event_id = ?", *eventID)
	}

	var rows []ActorLocationRow
	if err := query.
		Group("check_in_logs.checked_in_by_id, events.location").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
