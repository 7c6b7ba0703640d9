package models

import "time"

// CheckInLog is one row of the append-only check-in ledger. Rows are created
// exactly once per successful check-in and never updated.
//
// The composite unique index on (participant_id, event_id, check_in_date) is
// the authoritative one-check-in-per-day guarantee: the application-level
// existence check before insert is only a fast path, the constraint decides
// under concurrent writers.
type CheckInLog struct {
	ID            uint  `gorm:"primaryKey" json:"id"`
	ParticipantID uint  `gorm:"not null;uniqueIndex:idx_checkin_once_per_day" json:"participantId"`
	EventID       uint  `gorm:"not null;index;uniqueIndex:idx_checkin_once_per_day" json:"eventId"`
	CheckedInByID *uint `gorm:"index" json:"checkedInById"`
	// CheckInDate is the calendar day the check-in counts for, used only for
	// uniqueness and date-scoped queries. CheckedInAt is the full instant of
	// the action, used for ordering and display.
	CheckInDate CalendarDate `gorm:"type:date;not null;uniqueIndex:idx_checkin_once_per_day" json:"checkInDate"`
	CheckedInAt time.Time    `gorm:"not null" json:"checkedInAt"`
	CreatedAt   time.Time    `json:"createdAt"`

	Participant Participant `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Event       Event       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	// History survives actor deletion: the reference is nulled, never cascaded.
	CheckedInBy *User `gorm:"foreignKey:CheckedInByID;constraint:OnDelete:SET NULL" json:"-"`
}
