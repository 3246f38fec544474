package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ingestedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestParseTimelineWithTimestamp(t *testing.T) {
	rec, err := ParseLine(`TIMELINE|2024-01-01T00:00:00Z|{"Command":"open","Handler":"Word","CommandArg":"report.docx"}`, ingestedAt)
	require.NoError(t, err)
	assert.Equal(t, RecordTimeline, rec.Type)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), rec.Timestamp)
	require.NotNil(t, rec.Timeline)
	assert.Equal(t, "open", rec.Timeline.Command)
	assert.Equal(t, "Word", rec.Timeline.Handler)
	assert.Equal(t, "report.docx", rec.Timeline.CommandArg)
	assert.Empty(t, rec.Timeline.TrackableID)
}

func TestParseTimelineLegacyForm(t *testing.T) {
	timed, err := ParseLine(`TIMELINE|2024-01-01T00:00:00Z|{"Command":"open","Handler":"Word"}`, ingestedAt)
	require.NoError(t, err)
	legacy, err := ParseLine(`TIMELINE|{"Command":"open","Handler":"Word"}`, ingestedAt)
	require.NoError(t, err)

	// equivalent records modulo timestamp source
	assert.Equal(t, timed.Timeline, legacy.Timeline)
	assert.Equal(t, ingestedAt, legacy.Timestamp)
}

func TestParseTimelinePayloadContainingPipes(t *testing.T) {
	rec, err := ParseLine(`TIMELINE|2024-01-01T00:00:00Z|{"Command":"type","CommandArg":"a|b|c"}`, ingestedAt)
	require.NoError(t, err)
	assert.Equal(t, "a|b|c", rec.Timeline.CommandArg)
}

func TestParseHealth(t *testing.T) {
	line := `HEALTH|2024-01-01T08:30:00Z|{"Internet":true,"Permissions":"user","ExecutionTime":419,"LoggedOnUsers":["alice","bob"],"Errors":[],"Stats":{"Memory":72}}`
	rec, err := ParseLine(line, ingestedAt)
	require.NoError(t, err)
	require.NotNil(t, rec.Health)
	assert.True(t, rec.Health.Internet)
	assert.Equal(t, []string{"alice", "bob"}, rec.Health.LoggedOnUsers)
	assert.Equal(t, int64(419), rec.Health.ExecutionTime)
	assert.JSONEq(t, `{"Memory":72}`, string(rec.Health.Stats))
}

func TestParseWebhookCreate(t *testing.T) {
	rec, err := ParseLine(`WEBHOOKCREATE|{"postback_url":"http://localhost/cb","postback_method":"POST"}`, ingestedAt)
	require.NoError(t, err)
	assert.JSONEq(t, `{"postback_url":"http://localhost/cb","postback_method":"POST"}`, string(rec.WebhookCreate))
}

func TestParseMalformedLines(t *testing.T) {
	cases := map[string]string{
		"no delimiter":      "garbage",
		"empty line":        "",
		"bad json":          `TIMELINE|{"Command":`,
		"bad timestamp":     `TIMELINE|someday|{"Command":"open"}`,
		"unknown type":      `MYSTERY|{"Command":"open"}`,
		"bad webhook json":  `WEBHOOKCREATE|{{`,
		"bad health json":   `HEALTH|2024-01-01T00:00:00Z|[not-an-object`,
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLine(line, ingestedAt)
			assert.Error(t, err)
		})
	}
}

func TestParseTimestampLayouts(t *testing.T) {
	for _, s := range []string{
		"2024-01-01T00:00:00Z",
		"2024-01-01T00:00:00",
		"2024-01-01 00:00:00",
		"01/01/2024 00:00:00",
	} {
		rec, err := ParseLine("TIMELINE|"+s+`|{"Command":"open"}`, ingestedAt)
		require.NoError(t, err, s)
		assert.Equal(t, 2024, rec.Timestamp.Year(), s)
	}
}
