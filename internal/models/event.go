package models

import "time"

// Event is an occasion participants are registered for and checked in to.
// Participants and ledger rows are exclusively owned by their event and are
// removed with it.
type Event struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	EventName     string        `gorm:"size:255;not null" json:"eventName"`
	Location      string        `gorm:"size:255" json:"location"`
	Date          *CalendarDate `gorm:"type:date" json:"date"`
	CreatedByID   uint          `gorm:"index;not null" json:"createdById"`
	CreatedBy     User          `gorm:"foreignKey:CreatedByID" json:"-"`
	Participants  []Participant `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CheckInLogs   []CheckInLog  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	AssignedUsers []User        `gorm:"many2many:event_assignments" json:"-"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}
