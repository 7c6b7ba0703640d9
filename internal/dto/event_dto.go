package dto

import (
	"time"

	"github.com/noah-isme/checkin-go-api/internal/models"
)

// EventCreateRequest creates a new event owned by the calling admin.
type EventCreateRequest struct {
	EventName string  `json:"eventName" validate:"required,min=3"`
	Location  string  `json:"location"`
	Date      *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// EventAssignRequest grants staff users access to an event.
type EventAssignRequest struct {
	UserIDs []uint `json:"userIds" validate:"required,min=1,dive,gt=0"`
}

// EventResponse is the client view of an event.
type EventResponse struct {
	ID          uint                 `json:"id"`
	EventName   string               `json:"eventName"`
	Location    string               `json:"location"`
	Date        *models.CalendarDate `json:"date"`
	CreatedByID uint                 `json:"createdById"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// EventDetailResponse adds directory and ledger totals to the event view.
type EventDetailResponse struct {
	EventResponse
	TotalParticipants int64 `json:"totalParticipants"`
	TotalCheckIns     int64 `json:"totalCheckIns"`
}

// NewEventResponse converts an event model into a DTO.
func NewEventResponse(model models.Event) EventResponse {
	return EventResponse{
		ID:          model.ID,
		EventName:   model.EventName,
		Location:    model.Location,
		Date:        model.Date,
		CreatedByID: model.CreatedByID,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewEventResponseSlice converts events in bulk.
func NewEventResponseSlice(events []models.Event) []EventResponse {
	responses := make([]EventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, NewEventResponse(event))
	}
	return responses
}
