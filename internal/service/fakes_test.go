package service

import (
	"context"
	"sync"
	"time"

	"zenremind/internal/alarm"
	"zenremind/internal/notify"
)

// fakeKV is an in-memory stand-in for the persistent key-value storage.
type fakeKV struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	value, ok := f.data[key]
	return value, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

// fakeRegistry records registered alarms without running timers.
type fakeRegistry struct {
	mu     sync.Mutex
	alarms map[string]time.Time
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{alarms: make(map[string]time.Time)}
}

func (f *fakeRegistry) Create(name string, when time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alarms[name] = when
}

func (f *fakeRegistry) Clear(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.alarms[name]
	delete(f.alarms, name)
	return ok
}

func (f *fakeRegistry) GetAll() []alarm.Alarm {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]alarm.Alarm, 0, len(f.alarms))
	for name, when := range f.alarms {
		all = append(all, alarm.Alarm{Name: name, When: when})
	}
	return all
}

func (f *fakeRegistry) has(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.alarms[name]
	return ok
}

func (f *fakeRegistry) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.alarms)
}

// recordingNotifier captures sent notifications.
type recordingNotifier struct {
	sent    []notify.Notification
	sendErr error
}

func (r *recordingNotifier) Send(_ context.Context, _ string, n notify.Notification) error {
	if r.sendErr != nil {
		return r.sendErr
	}
	r.sent = append(r.sent, n)
	return nil
}
