package models

import "time"

// Survey is a point-in-time inventory of a machine, posted by agents on a
// slow cadence. The nested collections persist with the parent row.
type Survey struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	MachineID     string    `gorm:"index;size:64" json:"machine_id"`
	Created       time.Time `json:"created"`
	UptimeSeconds int64     `json:"uptime_seconds"`

	Interfaces []SurveyInterface `gorm:"foreignKey:SurveyID" json:"interfaces"`
	LocalUsers []SurveyLocalUser `gorm:"foreignKey:SurveyID" json:"local_users"`
	Drives     []SurveyDrive     `gorm:"foreignKey:SurveyID" json:"drives"`
	Processes  []SurveyProcess   `gorm:"foreignKey:SurveyID" json:"processes"`
	Ports      []SurveyPort      `gorm:"foreignKey:SurveyID" json:"ports"`
}

type SurveyInterface struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	SurveyID        uint   `gorm:"index" json:"survey_id"`
	Name            string `gorm:"size:255" json:"name"`
	InternetAddress string `gorm:"size:64" json:"internet_address"`
	PhysicalAddress string `gorm:"size:64" json:"physical_address"`
}

type SurveyLocalUser struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	SurveyID uint   `gorm:"index" json:"survey_id"`
	Username string `gorm:"size:255" json:"username"`
	Domain   string `gorm:"size:255" json:"domain"`
}

type SurveyDrive struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	SurveyID           uint   `gorm:"index" json:"survey_id"`
	Name               string `gorm:"size:255" json:"name"`
	RootDirectory      string `gorm:"size:255" json:"root_directory"`
	DriveFormat        string `gorm:"size:64" json:"drive_format"`
	TotalSize          int64  `json:"total_size"`
	AvailableFreeSpace int64  `json:"available_free_space"`
}

type SurveyProcess struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	SurveyID        uint   `gorm:"index" json:"survey_id"`
	ProcessName     string `gorm:"size:255" json:"process_name"`
	MainWindowTitle string `gorm:"size:255" json:"main_window_title"`
	Owner           string `gorm:"size:255" json:"owner"`
}

type SurveyPort struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	SurveyID     uint   `gorm:"index" json:"survey_id"`
	LocalPort    string `gorm:"size:16" json:"local_port"`
	LocalAddress string `gorm:"size:64" json:"local_address"`
	Protocol     string `gorm:"size:16" json:"protocol"`
	Process      string `gorm:"size:255" json:"process"`
}
