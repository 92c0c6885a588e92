package models

import "time"

type Conference struct {
	ConferenceID uint       `gorm:"primaryKey;column:conference_id" json:"conference_id"`
	Name         string     `gorm:"column:name" json:"name"`
	Description  *string    `gorm:"column:description" json:"description,omitempty"`
	OrganizerID  uint       `gorm:"column:organizer_id" json:"organizer_id"`
	StartDate    time.Time  `gorm:"column:start_date" json:"start_date"`
	EndDate      time.Time  `gorm:"column:end_date" json:"end_date"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Organizer *User   `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`
	Tracks    []Track `gorm:"foreignKey:ConferenceID" json:"tracks,omitempty"`
}

func (Conference) TableName() string {
	return "conferences"
}

// HasEnded reports whether the conference end date has passed.
func (c *Conference) HasEnded(now time.Time) bool {
	return c.EndDate.Before(now)
}

type Track struct {
	TrackID      uint       `gorm:"primaryKey;column:track_id" json:"track_id"`
	ConferenceID uint       `gorm:"column:conference_id;index" json:"conference_id"`
	Name         string     `gorm:"column:name" json:"name"`
	Description  *string    `gorm:"column:description" json:"description,omitempty"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (Track) TableName() string {
	return "tracks"
}
