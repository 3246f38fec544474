package models

import "time"

const (
	WebhookMethodGET  = "GET"
	WebhookMethodPOST = "POST"
)

// Webhook is a registered postback endpoint. PostbackFormat may contain
// bracketed tokens ([MachineName], [DateTime.UtcNow], [MessageType],
// [MessagePayload]) substituted at dispatch time.
type Webhook struct {
	ID              string     `gorm:"primaryKey;size:64" json:"id"`
	Status          StatusType `gorm:"size:32" json:"status"`
	Description     string     `gorm:"size:255" json:"description"`
	PostbackURL     string     `gorm:"size:1024" json:"postback_url"`
	PostbackMethod  string     `gorm:"size:16" json:"postback_method"`
	PostbackFormat  string     `gorm:"type:text" json:"postback_format"`
	ApplicationName string     `gorm:"size:255" json:"application_name"`
	CreatedUtc      time.Time  `json:"created_utc"`
}
