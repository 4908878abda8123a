package model

import "time"

// SourceChatGPT tags reminders imported from an AI-chat schedule export.
const SourceChatGPT = "chatgpt"

// Reminder represents a due date derived from a calendar-like event.
// Timestamps are stored as ISO-8601 strings because the whole list is
// persisted as one JSON array under a single storage key.
type Reminder struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	StartAt     string  `json:"startAt"`
	EndAt       string  `json:"endAt"`
	HasTime     bool    `json:"hasTime"`
	ReminderAt  *string `json:"reminderAt"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
	Completed   bool    `json:"completed"`
	CompletedAt *string `json:"completedAt"`
	Notified    bool    `json:"notified"`
	NotifiedAt  *string `json:"notifiedAt"`
	Source      string  `json:"source"`
}

// State is the derived lifecycle state of a reminder. It is never persisted;
// it is inferred from the completed/notified flags and the due time.
type State string

const (
	StateScheduled   State = "scheduled"
	StateUnscheduled State = "unscheduled"
	StateCompleted   State = "completed"
	StateNotified    State = "notified"
)

// State reports the lifecycle state of the reminder as of now.
func (r *Reminder) State(now time.Time) State {
	switch {
	case r.Completed:
		return StateCompleted
	case r.Notified:
		return StateNotified
	case r.DueAt() != nil && r.DueAt().After(now):
		return StateScheduled
	default:
		return StateUnscheduled
	}
}

// DueAt returns the parsed reminder time, or nil when it is absent or
// unparseable.
func (r *Reminder) DueAt() *time.Time {
	if r.ReminderAt == nil {
		return nil
	}
	return ParseDate(*r.ReminderAt)
}
