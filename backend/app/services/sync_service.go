package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mirage/backend/app/models"
	"mirage/backend/app/queue"
	"mirage/backend/app/report"
	"mirage/backend/app/repo"
)

// SyncService is the single consumer of the background queue. It wakes on a
// configured interval, snapshots the queue, and routes every snapshotted
// entry to its processor. One failing entry never aborts the rest of a
// cycle, and a failing cycle never kills the loop.
type SyncService struct {
	queue       *queue.Queue
	machines    *MachineService
	history     *repo.HistoryRepository
	webhooks    *repo.WebhookRepository
	surveys     *repo.SurveyRepository
	machineRepo *repo.MachineRepository
	dispatcher  *Dispatcher
	presence    *PresenceService
	delay       time.Duration
	log         zerolog.Logger
}

func NewSyncService(
	q *queue.Queue,
	machines *MachineService,
	machineRepo *repo.MachineRepository,
	history *repo.HistoryRepository,
	webhooks *repo.WebhookRepository,
	surveys *repo.SurveyRepository,
	dispatcher *Dispatcher,
	presence *PresenceService,
	delay time.Duration,
	log zerolog.Logger,
) *SyncService {
	return &SyncService{
		queue:       q,
		machines:    machines,
		machineRepo: machineRepo,
		history:     history,
		webhooks:    webhooks,
		surveys:     surveys,
		dispatcher:  dispatcher,
		presence:    presence,
		delay:       delay,
		log:         log,
	}
}

// Run drains the queue until ctx is cancelled. Cancellation only prevents
// starting a new cycle; the cycle in flight finishes its snapshot.
func (s *SyncService) Run(ctx context.Context) {
	for {
		s.log.Trace().Msg("beginning sync cycle")
		s.Drain(ctx)
		s.log.Trace().Msg("ending sync cycle")

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.delay):
		}
	}
}

// Drain processes one snapshot of the queue. Entries enqueued while draining
// (notifications derived from machine reports) land in a later snapshot.
func (s *SyncService) Drain(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("sync cycle aborted")
		}
	}()

	for _, entry := range s.queue.Snapshot() {
		s.process(ctx, entry)
	}
}

func (s *SyncService) process(ctx context.Context, entry queue.Entry) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("kind", entry.Kind()).Msg("queue entry processing failed")
		}
	}()

	switch e := entry.(type) {
	case queue.MachineEntry:
		s.processMachine(ctx, e)
	case queue.NotificationEntry:
		s.processNotification(ctx, e)
	case queue.SurveyEntry:
		s.processSurvey(ctx, e)
	default:
		// a kind nobody routes is a programming error, not a runtime condition
		s.log.Panic().Str("kind", entry.Kind()).Msg("unhandled queue entry kind")
	}
}

// processMachine ingests one agent report: resolve the machine, record the
// history event, parse the log blob into derived row batches, and persist
// each batch independently. Every TIMELINE line re-enqueues a notification.
func (s *SyncService) processMachine(ctx context.Context, e queue.MachineEntry) {
	now := time.Now().UTC()

	machine, err := s.machines.Resolve(e.Machine)
	if err != nil {
		s.log.Error().Err(err).Str("name", e.Machine.Name).Msg("machine resolution failed")
		s.ack(ctx)
		return
	}

	machine.LastReportedUtc = now
	machine.StatusUp = models.UpDownUp
	s.presence.Touch(ctx, machine.ID)

	machinesBatch := []models.Machine{*machine}
	historyBatch := []models.MachineHistory{{
		MachineID:  machine.ID,
		Type:       e.HistoryType,
		CreatedUtc: now,
	}}

	var (
		timelines  []models.HistoryTimeline
		health     []models.HistoryHealth
		trackables []models.HistoryTrackable
		newHooks   []models.Webhook
	)

	if e.HistoryType == models.HistoryPostedResults {
		timelines, health, trackables, newHooks = s.parseLogDump(machine.ID, e.Log, now)
	}

	// acknowledge this unit of work; persistence below is best-effort
	s.ack(ctx)

	s.persistBatch("machines", len(machinesBatch), func() error { return s.machineRepo.SaveAll(machinesBatch) })
	s.persistBatch("trackables", len(trackables), func() error { return s.history.AddTrackables(trackables) })
	s.persistBatch("health", len(health), func() error { return s.history.AddHealth(health) })
	s.persistBatch("timelines", len(timelines), func() error { return s.history.AddTimelines(timelines) })
	s.persistBatch("histories", len(historyBatch), func() error { return s.history.AddMachineHistory(historyBatch) })
	s.persistBatch("webhooks", len(newHooks), func() error { return s.webhooks.CreateAll(newHooks) })

	s.log.Trace().
		Int("machines", len(machinesBatch)).
		Int("histories", len(historyBatch)).
		Int("timelines", len(timelines)).
		Int("health", len(health)).
		Int("trackables", len(trackables)).
		Int("webhooks", len(newHooks)).
		Msg("machine report processed")
}

// parseLogDump walks the report's log blob line by line. A corrupt line is
// logged and skipped; it never drops the rest of the batch.
func (s *SyncService) parseLogDump(machineID, blob string, now time.Time) (
	timelines []models.HistoryTimeline,
	health []models.HistoryHealth,
	trackables []models.HistoryTrackable,
	newHooks []models.Webhook,
) {
	for _, line := range strings.Split(strings.ReplaceAll(blob, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := report.ParseLine(line, now)
		if err != nil {
			s.log.Trace().Err(err).Str("line", line).Msg("bad log line")
			continue
		}

		switch rec.Type {
		case report.RecordTimeline:
			timeline := models.HistoryTimeline{
				MachineID:  machineID,
				Command:    rec.Timeline.Command,
				Handler:    rec.Timeline.Handler,
				CommandArg: rec.Timeline.CommandArg,
				Tags:       rec.Timeline.Tags,
				Result:     rec.Timeline.Result,
				CreatedUtc: rec.Timestamp,
			}
			timelines = append(timelines, timeline)

			s.enqueueTimelineNotification(timeline)

			if rec.Timeline.TrackableID != "" {
				trackables = append(trackables, models.HistoryTrackable{
					TrackableID: rec.Timeline.TrackableID,
					MachineID:   machineID,
					Command:     rec.Timeline.Command,
					Handler:     rec.Timeline.Handler,
					CommandArg:  rec.Timeline.CommandArg,
					Result:      rec.Timeline.Result,
					CreatedUtc:  rec.Timestamp,
				})
			}

		case report.RecordHealth:
			var stats string
			if len(rec.Health.Stats) > 0 {
				stats = string(rec.Health.Stats)
			}
			health = append(health, models.HistoryHealth{
				MachineID:     machineID,
				Internet:      rec.Health.Internet,
				Permissions:   rec.Health.Permissions,
				ExecutionTime: rec.Health.ExecutionTime,
				LoggedOnUsers: strings.Join(rec.Health.LoggedOnUsers, ","),
				Errors:        strings.Join(rec.Health.Errors, ","),
				Stats:         stats,
				CreatedUtc:    rec.Timestamp,
			})

		case report.RecordWebhookCreate:
			hook, err := webhookFromRegistration(rec.WebhookCreate)
			if err != nil {
				s.log.Info().Err(err).Str("line", line).Msg("deserializing webhook registration failed")
				continue
			}
			newHooks = append(newHooks, hook)
		}
	}
	return timelines, health, trackables, newHooks
}

func (s *SyncService) enqueueTimelineNotification(timeline models.HistoryTimeline) {
	body, err := json.Marshal(timeline)
	if err != nil {
		s.log.Error().Err(err).Msg("serializing timeline notification")
		return
	}
	if err := s.queue.Enqueue(queue.NotificationEntry{
		Type:    queue.NotificationTimeline,
		Payload: body,
	}); err != nil {
		s.log.Error().Err(err).Msg("enqueueing timeline notification")
	}
}

// processNotification fans one notification out to every active webhook.
// Deliveries are detached; absence of subscribers simply drops the entry.
func (s *SyncService) processNotification(ctx context.Context, e queue.NotificationEntry) {
	hooks, err := s.webhooks.Active()
	if err != nil {
		s.log.Error().Err(err).Msg("loading active webhooks")
	} else {
		for _, hook := range hooks {
			s.dispatcher.Dispatch(hook, e)
		}
	}
	s.ack(ctx)
}

func (s *SyncService) processSurvey(ctx context.Context, e queue.SurveyEntry) {
	survey := e.Survey
	if err := s.surveys.Create(&survey); err != nil {
		s.log.Error().Err(err).Str("machine", survey.MachineID).Msg("persisting survey failed")
	}
	s.ack(ctx)
}

// ack removes one entry from the queue head for the unit of work just
// processed. The queue is never empty here: the snapshot being drained still
// has at least this entry in it, and this loop is the only consumer.
func (s *SyncService) ack(ctx context.Context) {
	if _, err := s.queue.Dequeue(ctx); err != nil {
		s.log.Error().Err(err).Msg("queue acknowledgment failed")
	}
}

// webhookFromRegistration builds a webhook row from a client-supplied
// registration payload. Untrusted input; unknown fields are dropped by the
// decoder and missing ones get defaults.
func webhookFromRegistration(raw json.RawMessage) (models.Webhook, error) {
	var reg struct {
		Description     string `json:"description"`
		PostbackURL     string `json:"postback_url"`
		PostbackMethod  string `json:"postback_method"`
		PostbackFormat  string `json:"postback_format"`
		ApplicationName string `json:"application_name"`
	}
	if err := json.Unmarshal(raw, &reg); err != nil {
		return models.Webhook{}, err
	}
	method := strings.ToUpper(reg.PostbackMethod)
	if method != models.WebhookMethodGET && method != models.WebhookMethodPOST {
		method = models.WebhookMethodPOST
	}
	return models.Webhook{
		ID:              uuid.NewString(),
		Status:          models.StatusActive,
		Description:     reg.Description,
		PostbackURL:     reg.PostbackURL,
		PostbackMethod:  method,
		PostbackFormat:  reg.PostbackFormat,
		ApplicationName: reg.ApplicationName,
		CreatedUtc:      time.Now().UTC(),
	}, nil
}

func (s *SyncService) persistBatch(name string, size int, commit func() error) {
	if size == 0 {
		return
	}
	if err := commit(); err != nil {
		s.log.Error().Err(err).Str("batch", name).Int("rows", size).Msg("batch persist failed, rows dropped")
	}
}
