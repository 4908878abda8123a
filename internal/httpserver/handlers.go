package httpserver

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"zenremind/internal/logger"
	"zenremind/internal/model"
	"zenremind/internal/service"
)

// Message types accepted on the message endpoint. These mirror the request
// types the popup and content scripts send.
const (
	msgAddReminders     = "ADD_REMINDERS"
	msgCompleteReminder = "COMPLETE_REMINDER"
)

type handlers struct {
	store *service.Store
	log   logger.Logger
	now   func() time.Time
}

// message is the request envelope. Which fields matter depends on type.
type message struct {
	Type      string               `json:"type"`
	Events    []service.EventInput `json:"events"`
	ID        string               `json:"id"`
	Completed bool                 `json:"completed"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type reminderView struct {
	model.Reminder
	State model.State `json:"state"`
}

func (h *handlers) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, okResponse{OK: false})
		return
	}

	switch msg.Type {
	case msgAddReminders:
		result, err := h.store.AddReminders(r.Context(), msg.Events)
		if err != nil {
			h.log.Error("add reminders", logger.Error(err))
			writeJSON(w, http.StatusOK, service.AddResult{})
			return
		}
		writeJSON(w, http.StatusOK, result)
	case msgCompleteReminder:
		ok, err := h.store.UpdateCompletion(r.Context(), msg.ID, msg.Completed)
		if err != nil {
			h.log.Error("update completion", logger.String("id", msg.ID), logger.Error(err))
			ok = false
		}
		writeJSON(w, http.StatusOK, okResponse{OK: ok})
	default:
		writeJSON(w, http.StatusBadRequest, okResponse{OK: false})
	}
}

func (h *handlers) listReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.store.List(r.Context())
	if err != nil {
		h.log.Error("list reminders", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, okResponse{OK: false})
		return
	}

	now := h.now()
	views := make([]reminderView, 0, len(reminders))
	for i := range reminders {
		views = append(views, reminderView{
			Reminder: reminders[i],
			State:    reminders[i].State(now),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *handlers) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
