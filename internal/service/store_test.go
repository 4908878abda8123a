package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenremind/internal/logger"
	"zenremind/internal/model"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestStore(now time.Time) (*Store, *fakeKV, *fakeRegistry) {
	kv := newFakeKV()
	registry := newFakeRegistry()
	alarms := NewAlarmSync(registry, logger.Nop(), fixedNow(now))
	store := NewStore(kv, alarms, logger.Nop(), fixedNow(now))
	return store, kv, registry
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

func TestBuildFromEventID(t *testing.T) {
	store, _, _ := newTestStore(testNow)

	t.Run("matches the extension hash", func(t *testing.T) {
		r := store.BuildFromEvent(EventInput{Title: "a", StartAt: "b", EndAt: "c"})
		require.NotNil(t, r)
		assert.Equal(t, "rem-93373742", r.ID)
	})

	t.Run("ignores description and location", func(t *testing.T) {
		a := store.BuildFromEvent(EventInput{Title: "数学", StartAt: "2025-06-15", EndAt: "2025-06-16", Description: "x"})
		b := store.BuildFromEvent(EventInput{Title: "数学", StartAt: "2025-06-15", EndAt: "2025-06-16", Location: "y"})
		require.NotNil(t, a)
		require.NotNil(t, b)
		assert.Equal(t, a.ID, b.ID)
	})

	t.Run("rejects missing startAt", func(t *testing.T) {
		assert.Nil(t, store.BuildFromEvent(EventInput{Title: "no start"}))
	})

	t.Run("blank title gets the placeholder", func(t *testing.T) {
		r := store.BuildFromEvent(EventInput{Title: "   ", StartAt: "2025-06-15"})
		require.NotNil(t, r)
		assert.Equal(t, "予定", r.Title)
	})

	t.Run("unparseable startAt is stored with nil reminderAt", func(t *testing.T) {
		r := store.BuildFromEvent(EventInput{Title: "t", StartAt: "not-a-date"})
		require.NotNil(t, r)
		assert.Nil(t, r.ReminderAt)
	})
}

func TestLeadTimeRule(t *testing.T) {
	store, _, _ := newTestStore(testNow)

	t.Run("date-only normalizes to the default hour", func(t *testing.T) {
		r := store.BuildFromEvent(EventInput{Title: "レポート", StartAt: "2025-06-15"})
		require.NotNil(t, r)
		require.NotNil(t, r.ReminderAt)
		due := model.ParseDate(*r.ReminderAt)
		require.NotNil(t, due)
		assert.True(t, due.Equal(time.Date(2025, 6, 12, 9, 0, 0, 0, time.Local)), "got %s", due)
	})

	t.Run("timed events keep the start time", func(t *testing.T) {
		r := store.BuildFromEvent(EventInput{Title: "テスト", StartAt: "2025-06-15T14:30:00", HasTime: true})
		require.NotNil(t, r)
		require.NotNil(t, r.ReminderAt)
		due := model.ParseDate(*r.ReminderAt)
		require.NotNil(t, due)
		assert.True(t, due.Equal(time.Date(2025, 6, 12, 14, 30, 0, 0, time.Local)), "got %s", due)
	})
}

func TestAddReminders(t *testing.T) {
	ctx := context.Background()
	events := []EventInput{
		{Title: "課題A", StartAt: "2025-06-15"},
		{Title: "課題B", StartAt: "2025-06-20T10:00:00", HasTime: true},
	}

	t.Run("empty batch is rejected softly", func(t *testing.T) {
		store, _, _ := newTestStore(testNow)
		result, err := store.AddReminders(ctx, nil)
		require.NoError(t, err)
		assert.False(t, result.OK)
		assert.Zero(t, result.AddedCount)
		assert.Zero(t, result.SkippedCount)
	})

	t.Run("import is idempotent", func(t *testing.T) {
		store, _, registry := newTestStore(testNow)

		first, err := store.AddReminders(ctx, events)
		require.NoError(t, err)
		assert.True(t, first.OK)
		assert.Equal(t, 2, first.AddedCount)
		assert.Equal(t, 0, first.SkippedCount)
		assert.Equal(t, 2, registry.count())

		second, err := store.AddReminders(ctx, events)
		require.NoError(t, err)
		assert.True(t, second.OK)
		assert.Equal(t, 0, second.AddedCount)
		assert.Equal(t, 2, second.SkippedCount)
		assert.Equal(t, 2, registry.count())
	})

	t.Run("dedups within one batch", func(t *testing.T) {
		store, _, _ := newTestStore(testNow)
		result, err := store.AddReminders(ctx, []EventInput{events[0], events[0]})
		require.NoError(t, err)
		assert.Equal(t, 1, result.AddedCount)
		assert.Equal(t, 1, result.SkippedCount)
	})

	t.Run("events without startAt are skipped", func(t *testing.T) {
		store, _, _ := newTestStore(testNow)
		result, err := store.AddReminders(ctx, []EventInput{{Title: "no date"}, events[0]})
		require.NoError(t, err)
		assert.Equal(t, 1, result.AddedCount)
		assert.Equal(t, 1, result.SkippedCount)
	})

	t.Run("preserves insertion order", func(t *testing.T) {
		store, _, _ := newTestStore(testNow)
		_, err := store.AddReminders(ctx, events)
		require.NoError(t, err)

		list, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "課題A", list[0].Title)
		assert.Equal(t, "課題B", list[1].Title)
	})

	t.Run("past-due reminders are stored but never scheduled", func(t *testing.T) {
		// reminderAt is 2025-06-12 09:00, already behind this clock.
		store, _, registry := newTestStore(time.Date(2025, 6, 14, 0, 0, 0, 0, time.Local))
		result, err := store.AddReminders(ctx, []EventInput{events[0]})
		require.NoError(t, err)
		assert.Equal(t, 1, result.AddedCount)
		assert.Equal(t, 0, registry.count())

		list, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, model.StateUnscheduled, list[0].State(time.Date(2025, 6, 14, 0, 0, 0, 0, time.Local)))
	})
}

func TestUpdateCompletion(t *testing.T) {
	ctx := context.Background()
	event := EventInput{Title: "提出物", StartAt: "2025-06-15"}

	t.Run("completing clears the alarm, uncompleting restores it", func(t *testing.T) {
		store, _, registry := newTestStore(testNow)
		_, err := store.AddReminders(ctx, []EventInput{event})
		require.NoError(t, err)

		list, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		id := list[0].ID
		require.True(t, registry.has(AlarmName(id)))

		ok, err := store.UpdateCompletion(ctx, id, true)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, registry.has(AlarmName(id)))

		list, err = store.List(ctx)
		require.NoError(t, err)
		assert.True(t, list[0].Completed)
		assert.NotNil(t, list[0].CompletedAt)
		assert.Equal(t, model.StateCompleted, list[0].State(testNow))

		ok, err = store.UpdateCompletion(ctx, id, false)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, registry.has(AlarmName(id)))

		list, err = store.List(ctx)
		require.NoError(t, err)
		assert.False(t, list[0].Completed)
		assert.Nil(t, list[0].CompletedAt)
	})

	t.Run("empty id fails", func(t *testing.T) {
		store, _, _ := newTestStore(testNow)
		ok, err := store.UpdateCompletion(ctx, "", true)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown id fails", func(t *testing.T) {
		store, _, _ := newTestStore(testNow)
		ok, err := store.UpdateCompletion(ctx, "rem-404", true)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMarkNotified(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(testNow)

	_, err := store.AddReminders(ctx, []EventInput{{Title: "通知", StartAt: "2025-06-15"}})
	require.NoError(t, err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, store.MarkNotified(ctx, list[0].ID))

	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.True(t, list[0].Notified)
	assert.NotNil(t, list[0].NotifiedAt)
	assert.Equal(t, model.StateNotified, list[0].State(testNow))

	// Unknown id is a silent no-op.
	require.NoError(t, store.MarkNotified(ctx, "rem-404"))
}

func TestStorePlatformErrors(t *testing.T) {
	ctx := context.Background()
	event := EventInput{Title: "x", StartAt: "2025-06-15"}

	t.Run("read failure surfaces as an error", func(t *testing.T) {
		store, kv, _ := newTestStore(testNow)
		kv.getErr = errors.New("storage down")

		_, err := store.AddReminders(ctx, []EventInput{event})
		assert.Error(t, err)
	})

	t.Run("write failure leaves no alarm behind", func(t *testing.T) {
		store, kv, registry := newTestStore(testNow)
		kv.setErr = errors.New("storage down")

		_, err := store.AddReminders(ctx, []EventInput{event})
		assert.Error(t, err)
		assert.Zero(t, registry.count())
	})
}
