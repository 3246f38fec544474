package models

import "time"

const UpdateTypeTimeline = "Timeline"

// MachineUpdate is a pending instruction payload for one machine. Agents poll
// for these; a delivered update is deleted and a TimelineDelivered
// notification is raised.
type MachineUpdate struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	MachineID  string     `gorm:"index;size:64" json:"machine_id"`
	Type       string     `gorm:"size:32" json:"type"`
	Status     StatusType `gorm:"size:32" json:"status"`
	ActiveUtc  time.Time  `json:"active_utc"`
	Update     string     `gorm:"type:text" json:"update"`
	CreatedUtc time.Time  `json:"created_utc"`
}
