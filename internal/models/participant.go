package models

import "time"

// Participant is a person known to an event: a registry match, an invite-list
// entry or an ad-hoc walk-in. Re-submitting the same id number for the same
// event updates the existing row in place rather than creating another.
type Participant struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	IDNumber      string        `gorm:"size:32;not null;uniqueIndex:idx_participant_event_id_number" json:"idNumber"`
	EventID       *uint         `gorm:"uniqueIndex:idx_participant_event_id_number" json:"eventId"`
	Name          string        `gorm:"size:255;not null" json:"name"`
	DateOfBirth   *CalendarDate `gorm:"type:date" json:"dateOfBirth"`
	Sex           string        `gorm:"size:16" json:"sex"`
	County        *string       `gorm:"size:128" json:"county"`
	Constituency  *string       `gorm:"size:128" json:"constituency"`
	Ward          *string       `gorm:"size:128" json:"ward"`
	PollingCenter *string       `gorm:"size:255;column:polling_center" json:"pollingCenter"`
	Group         *string       `gorm:"size:128;column:group_name" json:"group"`
	// IsRegisteredVoter marks a registry match; IsInvited an invite-list
	// entry. Absent flags classify the participant as an ad-hoc walk-in.
	IsRegisteredVoter bool      `gorm:"not null;default:false" json:"isRegisteredVoter"`
	IsInvited         bool      `gorm:"not null;default:false" json:"isInvited"`
	Event             *Event    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
