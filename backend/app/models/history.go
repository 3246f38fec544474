package models

import "time"

// HistoryTimeline is one executed timeline command reported by an agent.
type HistoryTimeline struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MachineID  string    `gorm:"index;size:64" json:"MachineId"`
	Command    string    `gorm:"size:255" json:"Command"`
	Handler    string    `gorm:"size:255" json:"Handler"`
	CommandArg string    `gorm:"type:text" json:"CommandArg"`
	Tags       string    `gorm:"size:255" json:"Tags"`
	Result     string    `gorm:"type:text" json:"Result"`
	CreatedUtc time.Time `json:"CreatedUtc"`
}

// HistoryHealth is one agent health snapshot. List-valued client fields are
// stored comma-joined.
type HistoryHealth struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	MachineID     string    `gorm:"index;size:64" json:"machine_id"`
	Internet      bool      `json:"internet"`
	Permissions   string    `gorm:"size:255" json:"permissions"`
	ExecutionTime int64     `json:"execution_time"`
	LoggedOnUsers string    `gorm:"type:text" json:"logged_on_users"`
	Errors        string    `gorm:"type:text" json:"errors"`
	Stats         string    `gorm:"type:text" json:"stats"`
	CreatedUtc    time.Time `json:"created_utc"`
}

// HistoryTrackable mirrors a timeline row for commands that carried a
// caller-supplied trackable id, so integrators can follow a specific
// instruction through the system.
type HistoryTrackable struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TrackableID string    `gorm:"index;size:64" json:"trackable_id"`
	MachineID   string    `gorm:"index;size:64" json:"machine_id"`
	Command     string    `gorm:"size:255" json:"command"`
	Handler     string    `gorm:"size:255" json:"handler"`
	CommandArg  string    `gorm:"type:text" json:"command_arg"`
	Result      string    `gorm:"type:text" json:"result"`
	CreatedUtc  time.Time `json:"created_utc"`
}
