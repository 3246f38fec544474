package models

import "time"

type StatusType string

const (
	StatusActive   StatusType = "Active"
	StatusInactive StatusType = "Inactive"
	StatusDeleted  StatusType = "Deleted"
)

type UpDownStatus string

const (
	UpDownUnknown UpDownStatus = "Unknown"
	UpDownUp      UpDownStatus = "Up"
	UpDownDown    UpDownStatus = "Down"
)

// Machine is one remote agent install. Agents that have not yet been assigned
// an id report with identity fields only; the sync pipeline resolves or
// creates the record.
type Machine struct {
	ID              string       `gorm:"primaryKey;size:64" json:"id"`
	Name            string       `gorm:"index;size:255" json:"name"`
	FQDN            string       `gorm:"size:255" json:"fqdn"`
	Domain          string       `gorm:"size:255" json:"domain"`
	Host            string       `gorm:"size:255" json:"host"`
	ResolvedHost    string       `gorm:"size:255" json:"resolved_host"`
	HostIP          string       `gorm:"size:64" json:"host_ip"`
	IPAddress       string       `gorm:"size:64" json:"ip_address"`
	CurrentUsername string       `gorm:"size:255" json:"current_username"`
	ClientVersion   string       `gorm:"size:64" json:"client_version"`
	Status          StatusType   `gorm:"size:32" json:"status"`
	StatusUp        UpDownStatus `gorm:"size:32" json:"status_up"`
	LastReportedUtc time.Time    `json:"last_reported_utc"`
	CreatedUtc      time.Time    `json:"created_utc"`
}

// IsValid reports whether a machine checked in with enough identity to be
// matched or created without an assigned id.
func (m Machine) IsValid() bool {
	return m.Name != "" && m.FQDN != "" && m.HostIP != "" && m.CurrentUsername != ""
}

type HistoryType string

const (
	HistoryCreated          HistoryType = "Created"
	HistoryRequestedID      HistoryType = "RequestedId"
	HistoryRequestedUpdates HistoryType = "RequestedUpdates"
	HistoryPostedResults    HistoryType = "PostedResults"
)

// MachineHistory is the audit trail of agent interactions with the server.
type MachineHistory struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	MachineID  string      `gorm:"index;size:64" json:"machine_id"`
	Type       HistoryType `gorm:"size:32" json:"type"`
	CreatedUtc time.Time   `json:"created_utc"`
}
