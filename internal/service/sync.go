package service

import (
	"strings"
	"time"

	"zenremind/internal/alarm"
	"zenremind/internal/logger"
	"zenremind/internal/model"
)

// AlarmPrefix namespaces reminder alarms inside the shared registry.
const AlarmPrefix = "zen-reminder-"

// AlarmName returns the namespaced alarm name for a reminder id.
func AlarmName(id string) string {
	return AlarmPrefix + id
}

// AlarmRegistry is the platform alarm facility the synchronizer drives.
type AlarmRegistry interface {
	Create(name string, when time.Time)
	Clear(name string) bool
	GetAll() []alarm.Alarm
}

// AlarmSync keeps the alarm registry consistent with the store's notion of
// active reminders: not completed, not yet notified, due time in the future.
type AlarmSync struct {
	registry AlarmRegistry
	log      logger.Logger
	now      func() time.Time
}

func NewAlarmSync(registry AlarmRegistry, log logger.Logger, now func() time.Time) *AlarmSync {
	return &AlarmSync{registry: registry, log: log, now: now}
}

// ScheduleAlarmForReminder registers a one-shot alarm at the reminder's due
// time. No-op for completed, notified, undated, or past-due reminders.
// Re-registering overwrites, so calling it repeatedly is safe.
func (s *AlarmSync) ScheduleAlarmForReminder(reminder *model.Reminder) {
	if reminder == nil || reminder.Completed || reminder.Notified {
		return
	}
	due := reminder.DueAt()
	if due == nil || !due.After(s.now()) {
		return
	}
	s.registry.Create(AlarmName(reminder.ID), *due)
}

// ClearAlarmForReminder removes the reminder's alarm if one is registered.
func (s *AlarmSync) ClearAlarmForReminder(id string) {
	s.registry.Clear(AlarmName(id))
}

// Resync reconciles the registry against the given reminder list: alarms in
// the reminder namespace whose id is no longer stored are cancelled, then
// every reminder is (re-)scheduled. Scheduling is a no-op for inactive
// reminders and an overwrite for active ones, so the whole pass is
// idempotent. Run at process start, where it compensates for registrations
// lost with the previous process.
func (s *AlarmSync) Resync(reminders []model.Reminder) {
	known := make(map[string]struct{}, len(reminders))
	for _, reminder := range reminders {
		known[AlarmName(reminder.ID)] = struct{}{}
	}

	stale := 0
	for _, a := range s.registry.GetAll() {
		if !strings.HasPrefix(a.Name, AlarmPrefix) {
			continue
		}
		if _, ok := known[a.Name]; !ok {
			s.registry.Clear(a.Name)
			stale++
		}
	}

	for i := range reminders {
		s.ScheduleAlarmForReminder(&reminders[i])
	}

	s.log.Info("alarms resynced",
		logger.Int("reminders", len(reminders)),
		logger.Int("stale_cleared", stale))
}
