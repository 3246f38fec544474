package services

import (
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mirage/backend/app/models"
	"mirage/backend/app/queue"
)

var postbackToken = regexp.MustCompile(`\[(.*?)\]`)

// Dispatcher renders postback templates and delivers them to webhook
// endpoints. Deliveries run detached from the caller so a slow subscriber
// never stalls ingestion; Wait drains in-flight deliveries at shutdown.
type Dispatcher struct {
	client *http.Client
	log    zerolog.Logger
	wg     sync.WaitGroup
}

func NewDispatcher(log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}
}

// Dispatch fires one delivery in the background and returns immediately.
func (d *Dispatcher) Dispatch(hook models.Webhook, n queue.NotificationEntry) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.Deliver(hook, n)
	}()
}

// Wait blocks until every in-flight delivery has finished.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Deliver renders and sends one notification to one webhook synchronously.
// Failures are logged and never retried; delivery is at-most-once.
func (d *Dispatcher) Deliver(hook models.Webhook, n queue.NotificationEntry) {
	body, ok := d.Render(hook, n)
	if !ok {
		return
	}

	var (
		resp *http.Response
		err  error
	)
	switch hook.PostbackMethod {
	case models.WebhookMethodPOST:
		resp, err = d.client.Post(hook.PostbackURL, "application/json", strings.NewReader(body))
	case models.WebhookMethodGET:
		resp, err = d.client.Get(hook.PostbackURL + "?message=" + url.QueryEscape(body))
	default:
		d.log.Error().Str("webhook", hook.ID).Str("method", hook.PostbackMethod).
			Msg("webhook configured with unspecified postback method")
		return
	}
	if err != nil {
		d.log.Warn().Err(err).Str("url", hook.PostbackURL).Str("method", hook.PostbackMethod).
			Msg("webhook delivery failed")
		return
	}
	defer resp.Body.Close()
	d.log.Debug().Str("url", hook.PostbackURL).Str("method", hook.PostbackMethod).
		Int("status", resp.StatusCode).Msg("webhook delivered")
}

// Render produces the outbound body for one notification. TimelineDelivered
// payloads pass through untouched. Timeline payloads are substituted into the
// webhook's postback template; the render is all-or-nothing. A template
// whose [MessagePayload] cannot be filled (missing or empty Result) aborts
// the dispatch entirely.
func (d *Dispatcher) Render(hook models.Webhook, n queue.NotificationEntry) (string, bool) {
	if n.Type == queue.NotificationTimelineDelivered {
		return string(n.Payload), true
	}

	var timeline models.HistoryTimeline
	if err := json.Unmarshal(n.Payload, &timeline); err != nil {
		d.log.Warn().Err(err).Str("webhook", hook.ID).Msg("notification payload is not a timeline record")
		return "", false
	}

	out := hook.PostbackFormat
	if out == "" {
		return "", false
	}

	valid := false
	for _, match := range postbackToken.FindAllString(out, -1) {
		switch strings.ToLower(match) {
		case "[machinename]":
			out = strings.ReplaceAll(out, match, timeline.MachineID)
		case "[datetime.utcnow]":
			out = strings.ReplaceAll(out, match, timeline.CreatedUtc.UTC().Format("2006-01-02T15:04:05"))
		case "[messagetype]":
			out = strings.ReplaceAll(out, match, "Binary")
		case "[messagepayload]":
			result := strings.TrimSpace(strings.Trim(strings.TrimSpace(timeline.Result), `"`))
			if result == "" {
				continue
			}
			// keep the outbound body well-formed json
			out = strings.ReplaceAll(out, match, strconv.Quote(result))
			valid = true
		}
	}

	if !valid {
		d.log.Debug().Str("webhook", hook.ID).Msg("webhook has no payload, skipping")
		return "", false
	}
	return out, true
}
