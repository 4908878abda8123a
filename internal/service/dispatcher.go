package service

import (
	"context"
	"fmt"
	"strings"

	"zenremind/internal/logger"
	"zenremind/internal/model"
	"zenremind/internal/notify"
)

const notificationTitle = "リマインダー"

// Dispatcher turns alarm fires into user-visible notifications.
type Dispatcher struct {
	store    *Store
	notifier notify.Notifier
	log      logger.Logger
}

func NewDispatcher(store *Store, notifier notify.Notifier, log logger.Logger) *Dispatcher {
	return &Dispatcher{store: store, notifier: notifier, log: log}
}

// HandleAlarm processes one alarm fire. Alarms outside the reminder namespace
// are ignored. A reminder that was completed or already notified between
// scheduling and firing is left alone, which also makes duplicate fires for
// the same alarm name a no-op.
func (d *Dispatcher) HandleAlarm(ctx context.Context, alarmName string) {
	if !strings.HasPrefix(alarmName, AlarmPrefix) {
		return
	}
	id := strings.TrimPrefix(alarmName, AlarmPrefix)

	reminders, err := d.store.List(ctx)
	if err != nil {
		d.log.Error("load reminders for alarm", logger.String("alarm", alarmName), logger.Error(err))
		return
	}

	var reminder *model.Reminder
	for i := range reminders {
		if reminders[i].ID == id {
			reminder = &reminders[i]
			break
		}
	}
	if reminder == nil || reminder.Completed || reminder.Notified {
		return
	}

	if err := d.notifier.Send(ctx, reminder.ID, buildNotification(reminder)); err != nil {
		d.log.Error("send notification", logger.String("id", reminder.ID), logger.Error(err))
		return
	}

	if err := d.store.MarkNotified(ctx, id); err != nil {
		d.log.Error("mark notified", logger.String("id", id), logger.Error(err))
	}
}

func buildNotification(reminder *model.Reminder) notify.Notification {
	title := reminder.Title
	if title == "" {
		title = placeholderTitle
	}

	message := fmt.Sprintf("「%s」の期限が%d日前です", title, reminderDaysBefore)
	if dueText := model.FormatDateText(reminder.StartAt, reminder.HasTime); dueText != "" {
		message = fmt.Sprintf("%s (%s)", message, dueText)
	}

	return notify.Notification{Title: notificationTitle, Message: message}
}
