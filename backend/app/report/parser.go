// Package report parses the pipe-delimited activity log protocol agents use
// when posting results: one record per line, either TYPE|TIMESTAMP|JSON or
// the legacy TYPE|JSON form.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type RecordType string

const (
	RecordTimeline      RecordType = "TIMELINE"
	RecordHealth        RecordType = "HEALTH"
	RecordWebhookCreate RecordType = "WEBHOOKCREATE"
)

// TimelineRecord is one executed timeline command as the agent reported it.
// Optional fields stay empty when the agent omits them.
type TimelineRecord struct {
	Command     string `json:"Command"`
	Handler     string `json:"Handler"`
	CommandArg  string `json:"CommandArg"`
	Tags        string `json:"Tags"`
	Result      string `json:"Result"`
	TrackableID string `json:"TrackableId"`
}

// HealthRecord is one agent health snapshot.
type HealthRecord struct {
	Internet      bool            `json:"Internet"`
	Permissions   string          `json:"Permissions"`
	ExecutionTime int64           `json:"ExecutionTime"`
	LoggedOnUsers []string        `json:"LoggedOnUsers"`
	Errors        []string        `json:"Errors"`
	Stats         json.RawMessage `json:"Stats"`
}

// Record is the parse result for one log line. Exactly one of the payload
// fields is set, selected by Type.
type Record struct {
	Type      RecordType
	Timestamp time.Time
	Timeline  *TimelineRecord
	Health    *HealthRecord
	// WebhookCreate is left as raw JSON; it is client-supplied and validated
	// by whoever registers the webhook.
	WebhookCreate json.RawMessage
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
}

// ParseLine parses one log line. now supplies the record timestamp for the
// legacy two-field form. Lines with fewer than two fields, unparseable
// timestamps, bad JSON, or an unknown type tag all return an error; callers
// skip the line and continue with the rest of the blob.
func ParseLine(line string, now time.Time) (*Record, error) {
	fields := strings.Split(line, "|")
	if len(fields) < 2 {
		return nil, fmt.Errorf("parse line: %d field(s), need at least 2", len(fields))
	}

	tag := strings.TrimSpace(fields[0])
	ts := now
	var payload string

	if len(fields) >= 3 {
		parsed, err := parseTimestamp(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("parse line: %w", err)
		}
		ts = parsed
		// the payload itself may contain pipes
		payload = strings.Join(fields[2:], "|")
	} else {
		// legacy form without a timestamp
		payload = fields[1]
	}

	rec := &Record{Type: RecordType(tag), Timestamp: ts}
	switch rec.Type {
	case RecordTimeline:
		var t TimelineRecord
		if err := json.Unmarshal([]byte(payload), &t); err != nil {
			return nil, fmt.Errorf("parse %s payload: %w", tag, err)
		}
		rec.Timeline = &t
	case RecordHealth:
		var h HealthRecord
		if err := json.Unmarshal([]byte(payload), &h); err != nil {
			return nil, fmt.Errorf("parse %s payload: %w", tag, err)
		}
		rec.Health = &h
	case RecordWebhookCreate:
		if !json.Valid([]byte(payload)) {
			return nil, fmt.Errorf("parse %s payload: invalid json", tag)
		}
		rec.WebhookCreate = json.RawMessage(payload)
	default:
		return nil, fmt.Errorf("parse line: unknown record type %q", tag)
	}
	return rec, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
