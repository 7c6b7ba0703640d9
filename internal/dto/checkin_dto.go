package dto

import (
	"time"

	"github.com/noah-isme/checkin-go-api/internal/models"
)

// CheckInRequest is the payload for recording a check-in.
type CheckInRequest struct {
	EventID  uint   `json:"eventId" validate:"required,gt=0"`
	IDNumber string `json:"idNumber" validate:"required"`
}

// CheckInRecord is the minimal view of a created ledger row.
type CheckInRecord struct {
	ID            uint                `json:"id"`
	ParticipantID uint                `json:"participantId"`
	EventID       uint                `json:"eventId"`
	CheckInDate   models.CalendarDate `json:"checkInDate"`
	CheckedInAt   time.Time           `json:"checkedInAt"`
}

// CheckInResponse is returned from a successful check-in transaction.
type CheckInResponse struct {
	CheckIn     CheckInRecord   `json:"checkIn"`
	Participant ParticipantLite `json:"participant"`
}

// CheckInEntry is a ledger row joined with participant and actor identity,
// as returned by list endpoints.
type CheckInEntry struct {
	ID          uint                `json:"id"`
	CheckInDate models.CalendarDate `json:"checkInDate"`
	CheckedInAt time.Time           `json:"checkedInAt"`
	Participant ParticipantLite     `json:"participant"`
	CheckedInBy *UserLite           `json:"checkedInBy"`
}

// CheckInListResponse wraps a set of ledger rows with their count.
type CheckInListResponse struct {
	Count    int            `json:"count"`
	CheckIns []CheckInEntry `json:"checkIns"`
}

// UserLite identifies an actor without exposing the full user record.
type UserLite struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// NewCheckInRecord converts a ledger row into its minimal DTO.
func NewCheckInRecord(model models.CheckInLog) CheckInRecord {
	return CheckInRecord{
		ID:            model.ID,
		ParticipantID: model.ParticipantID,
		EventID:       model.EventID,
		CheckInDate:   model.CheckInDate,
		CheckedInAt:   model.CheckedInAt,
	}
}

// NewCheckInEntry converts a preloaded ledger row into its joined DTO.
func NewCheckInEntry(model models.CheckInLog) CheckInEntry {
	entry := CheckInEntry{
		ID:          model.ID,
		CheckInDate: model.CheckInDate,
		CheckedInAt: model.CheckedInAt,
		Participant: NewParticipantLite(model.Participant),
	}
	if model.CheckedInBy != nil {
		entry.CheckedInBy = &UserLite{ID: model.CheckedInBy.ID, Name: model.CheckedInBy.Name}
	}
	return entry
}

// NewCheckInListResponse converts a slice of preloaded ledger rows.
func NewCheckInListResponse(logs []models.CheckInLog) CheckInListResponse {
	entries := make([]CheckInEntry, 0, len(logs))
	for _, log := range logs {
		entries = append(entries, NewCheckInEntry(log))
	}
	return CheckInListResponse{Count: len(entries), CheckIns: entries}
}
