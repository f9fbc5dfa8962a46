package models

import "time"

type Event struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string     `gorm:"size:255;index;not null" json:"name"`
	Description *string    `gorm:"type:text" json:"description"`
	EventDate   *time.Time `gorm:"type:date" json:"event_date"`

	Participants []EventParticipant `gorm:"foreignKey:EventID" json:"participants,omitempty"`

	Audit
}

func (Event) TableName() string { return "events" }

type EventParticipant struct {
	ID uint `gorm:"primaryKey" json:"id"`

	EventID uint `gorm:"uniqueIndex:idx_event_person;not null" json:"event_id"`

	PersonID uint   `gorm:"uniqueIndex:idx_event_person;not null" json:"person_id"`
	Person   Person `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"person"`

	Audit
}

func (EventParticipant) TableName() string { return "event_participants" }
