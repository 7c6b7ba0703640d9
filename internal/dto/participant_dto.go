package dto

import (
	"time"

	"github.com/noah-isme/checkin-go-api/internal/models"
)

// ParticipantSearchRequest looks a participant up by event and id number,
// falling back to the external voter registry on a directory miss.
type ParticipantSearchRequest struct {
	EventID  uint   `json:"eventId" validate:"required,gt=0"`
	IDNumber string `json:"idNumber" validate:"required"`
}

// ParticipantCreateRequest registers (or idempotently re-registers) a
// participant against an event.
type ParticipantCreateRequest struct {
	EventID       uint    `json:"eventId" validate:"required,gt=0"`
	IDNumber      string  `json:"idNumber" validate:"required"`
	Name          string  `json:"name" validate:"required"`
	DateOfBirth   *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Sex           string  `json:"sex"`
	County        *string `json:"county"`
	Constituency  *string `json:"constituency"`
	Ward          *string `json:"ward"`
	PollingCenter *string `json:"pollingCenter"`
	Group         *string `json:"group"`
	IsInvited     bool    `json:"isInvited"`
}

// ParticipantLite is the minimal participant identity attached to check-in
// responses.
type ParticipantLite struct {
	ID       uint   `json:"id"`
	IDNumber string `json:"idNumber"`
	Name     string `json:"name"`
}

// ParticipantResponse is the full participant view.
type ParticipantResponse struct {
	ID                uint                 `json:"id"`
	IDNumber          string               `json:"idNumber"`
	EventID           *uint                `json:"eventId"`
	Name              string               `json:"name"`
	DateOfBirth       *models.CalendarDate `json:"dateOfBirth"`
	Sex               string               `json:"sex"`
	County            *string              `json:"county"`
	Constituency      *string              `json:"constituency"`
	Ward              *string              `json:"ward"`
	PollingCenter     *string              `json:"pollingCenter"`
	Group             *string              `json:"group"`
	IsRegisteredVoter bool                 `json:"isRegisteredVoter"`
	IsInvited         bool                 `json:"isInvited"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// ImportSummary reports the outcome of a bulk participant import.
type ImportSummary struct {
	BatchID  string   `json:"batchId"`
	Imported int      `json:"imported"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// NewParticipantLite converts a participant into its minimal identity view.
func NewParticipantLite(model models.Participant) ParticipantLite {
	return ParticipantLite{ID: model.ID, IDNumber: model.IDNumber, Name: model.Name}
}

// NewParticipantResponse converts a participant model into a DTO.
func NewParticipantResponse(model models.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:                model.ID,
		IDNumber:          model.IDNumber,
		EventID:           model.EventID,
		Name:              model.Name,
		DateOfBirth:       model.DateOfBirth,
		Sex:               model.Sex,
		County:            model.County,
		Constituency:      model.Constituency,
		Ward:              model.Ward,
		PollingCenter:     model.PollingCenter,
		Group:             model.Group,
		IsRegisteredVoter: model.IsRegisteredVoter,
		IsInvited:         model.IsInvited,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

// NewParticipantResponseSlice converts participants in bulk.
func NewParticipantResponseSlice(participants []models.Participant) []ParticipantResponse {
	responses := make([]ParticipantResponse, 0, len(participants))
	for _, participant := range participants {
		responses = append(responses, NewParticipantResponse(participant))
	}
	return responses
}
