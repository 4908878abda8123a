// Package alarm provides a named one-shot alarm registry, the in-process
// equivalent of the browser alarms API: create by name at an absolute time,
// clear by name, enumerate, and a single fire callback.
package alarm

import (
	"sync"
	"time"

	"zenremind/internal/logger"
)

// Alarm describes one registered wake-up.
type Alarm struct {
	Name string
	When time.Time
}

// Handler receives the name of an alarm that elapsed.
type Handler func(name string)

// Registry tracks one pending timer per alarm name. Registrations do not
// survive a process restart; callers are expected to resync after startup.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	handler Handler
	stopped bool
	log     logger.Logger
}

type entry struct {
	when  time.Time
	timer *time.Timer
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		log:     log,
	}
}

// OnAlarm sets the fire callback. Must be called before Create.
func (r *Registry) OnAlarm(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = h
}

// Create registers a one-shot alarm firing at the absolute time when.
// Creating under an existing name replaces the prior registration.
func (r *Registry) Create(name string, when time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}

	if prev, ok := r.entries[name]; ok {
		prev.timer.Stop()
	}

	delay := time.Until(when)
	if delay < 0 {
		delay = 0
	}

	e := &entry{when: when}
	e.timer = time.AfterFunc(delay, func() { r.fire(name, e) })
	r.entries[name] = e
	r.log.Debug("alarm registered", logger.String("name", name), logger.Time("when", when))
}

// Clear cancels the alarm with the given name. Reports whether one existed.
func (r *Registry) Clear(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.entries[name]
	if !ok {
		return false
	}
	prev.timer.Stop()
	delete(r.entries, name)
	return true
}

// GetAll returns a snapshot of every pending alarm.
func (r *Registry) GetAll() []Alarm {
	r.mu.Lock()
	defer r.mu.Unlock()

	alarms := make([]Alarm, 0, len(r.entries))
	for name, e := range r.entries {
		alarms = append(alarms, Alarm{Name: name, When: e.when})
	}
	return alarms
}

// Stop cancels all pending alarms and rejects further registrations.
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopped = true
	for name, e := range r.entries {
		e.timer.Stop()
		delete(r.entries, name)
	}
}

func (r *Registry) fire(name string, e *entry) {
	r.mu.Lock()
	// The registration may have been replaced or cleared between scheduling
	// and firing; only deliver if this entry is still the live one.
	if r.entries[name] != e {
		r.mu.Unlock()
		return
	}
	delete(r.entries, name)
	handler := r.handler
	r.mu.Unlock()

	if handler != nil {
		handler(name)
	}
}
