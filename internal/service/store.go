package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"zenremind/internal/logger"
	"zenremind/internal/model"
)

const (
	// StorageKey is the single persistent key holding the reminder array.
	StorageKey = "zenReminders"

	reminderDaysBefore  = 3
	defaultReminderHour = 9

	placeholderTitle = "予定"
)

// KV is the persistent key-value storage the store runs on.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// EventInput is one calendar-like event submitted for import.
type EventInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	StartAt     string `json:"startAt"`
	EndAt       string `json:"endAt"`
	HasTime     bool   `json:"hasTime"`
}

// AddResult reports the outcome of a batch import.
type AddResult struct {
	OK           bool `json:"ok"`
	AddedCount   int  `json:"addedCount"`
	SkippedCount int  `json:"skippedCount"`
}

// Store owns the durable reminder list. Every operation reads the stored
// array fresh, mutates it, and writes it back once; the mutex serializes
// those read-modify-write cycles within the process.
type Store struct {
	mu     sync.Mutex
	kv     KV
	alarms *AlarmSync
	log    logger.Logger
	now    func() time.Time
}

func NewStore(kv KV, alarms *AlarmSync, log logger.Logger, now func() time.Time) *Store {
	return &Store{kv: kv, alarms: alarms, log: log, now: now}
}

// BuildFromEvent derives a reminder from an event, or nil when the event has
// no startAt. An unparseable startAt still yields a reminder, just one that
// can never be scheduled (nil reminderAt).
func (s *Store) BuildFromEvent(event EventInput) *model.Reminder {
	title := strings.TrimSpace(event.Title)
	if event.StartAt == "" {
		return nil
	}

	nowISO := s.now().Format(time.RFC3339)
	if title == "" {
		title = placeholderTitle
	}

	return &model.Reminder{
		ID:          hashEventKey(fmt.Sprintf("%s|%s|%s", strings.TrimSpace(event.Title), event.StartAt, event.EndAt)),
		Title:       title,
		Description: event.Description,
		Location:    event.Location,
		StartAt:     event.StartAt,
		EndAt:       event.EndAt,
		HasTime:     event.HasTime,
		ReminderAt:  computeReminderAt(event.StartAt, event.HasTime),
		CreatedAt:   nowISO,
		UpdatedAt:   nowISO,
		Completed:   false,
		CompletedAt: nil,
		Notified:    false,
		NotifiedAt:  nil,
		Source:      model.SourceChatGPT,
	}
}

// computeReminderAt applies the lead-time rule: the wake time is the event
// start minus the fixed lead, normalized to the default hour for date-only
// events and keeping the exact start time otherwise.
func computeReminderAt(startAt string, hasTime bool) *string {
	start := model.ParseDate(startAt)
	if start == nil {
		return nil
	}
	due := start.AddDate(0, 0, -reminderDaysBefore)
	if !hasTime {
		due = time.Date(due.Year(), due.Month(), due.Day(), defaultReminderHour, 0, 0, 0, due.Location())
	}
	formatted := due.Format(time.RFC3339)
	return &formatted
}

// AddReminders builds a reminder per event, dedups against the store and
// earlier events in the same batch, persists once, and schedules an alarm per
// survivor. An empty batch is rejected softly.
func (s *Store) AddReminders(ctx context.Context, events []EventInput) (AddResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(events) == 0 {
		return AddResult{}, nil
	}

	existing, err := s.load(ctx)
	if err != nil {
		return AddResult{}, err
	}

	existingIDs := make(map[string]struct{}, len(existing))
	for _, reminder := range existing {
		existingIDs[reminder.ID] = struct{}{}
	}

	var additions []model.Reminder
	for _, event := range events {
		reminder := s.BuildFromEvent(event)
		if reminder == nil {
			continue
		}
		if _, dup := existingIDs[reminder.ID]; dup {
			continue
		}
		existingIDs[reminder.ID] = struct{}{}
		additions = append(additions, *reminder)
		existing = append(existing, *reminder)
	}

	if len(additions) > 0 {
		if err := s.save(ctx, existing); err != nil {
			return AddResult{}, err
		}
		for i := range additions {
			s.alarms.ScheduleAlarmForReminder(&additions[i])
		}
	}

	s.log.Info("reminders imported",
		logger.Int("added", len(additions)),
		logger.Int("skipped", len(events)-len(additions)))

	return AddResult{
		OK:           true,
		AddedCount:   len(additions),
		SkippedCount: len(events) - len(additions),
	}, nil
}

// UpdateCompletion toggles the completed flag. Completing clears the
// reminder's alarm; uncompleting re-schedules it when the due time is still
// ahead. Reports false for an empty or unknown id.
func (s *Store) UpdateCompletion(ctx context.Context, id string, completed bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		return false, nil
	}

	reminders, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	var updated *model.Reminder
	nowISO := s.now().Format(time.RFC3339)
	for i := range reminders {
		if reminders[i].ID != id {
			continue
		}
		reminders[i].Completed = completed
		if completed {
			completedAt := nowISO
			reminders[i].CompletedAt = &completedAt
		} else {
			reminders[i].CompletedAt = nil
		}
		reminders[i].UpdatedAt = nowISO
		updated = &reminders[i]
		break
	}

	if updated == nil {
		return false, nil
	}

	if err := s.save(ctx, reminders); err != nil {
		return false, err
	}

	if updated.Completed {
		s.alarms.ClearAlarmForReminder(id)
	} else {
		s.alarms.ScheduleAlarmForReminder(updated)
	}

	return true, nil
}

// MarkNotified records notification delivery. Unknown ids are ignored.
func (s *Store) MarkNotified(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		return nil
	}

	reminders, err := s.load(ctx)
	if err != nil {
		return err
	}

	nowISO := s.now().Format(time.RFC3339)
	for i := range reminders {
		if reminders[i].ID != id {
			continue
		}
		notifiedAt := nowISO
		reminders[i].Notified = true
		reminders[i].NotifiedAt = &notifiedAt
		reminders[i].UpdatedAt = nowISO
	}

	return s.save(ctx, reminders)
}

// List returns the stored reminders in insertion order.
func (s *Store) List(ctx context.Context) ([]model.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) ([]model.Reminder, error) {
	raw, found, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load reminders: %w", err)
	}
	if !found || raw == "" {
		return nil, nil
	}

	var reminders []model.Reminder
	if err := json.Unmarshal([]byte(raw), &reminders); err != nil {
		return nil, fmt.Errorf("decode reminders: %w", err)
	}
	return reminders, nil
}

func (s *Store) save(ctx context.Context, reminders []model.Reminder) error {
	raw, err := json.Marshal(reminders)
	if err != nil {
		return fmt.Errorf("encode reminders: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(raw)); err != nil {
		return fmt.Errorf("save reminders: %w", err)
	}
	return nil
}
