package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/hearth/internal/adapters/kasa"
)

// scheduler is the native schedule surface Kasa plugs expose beyond the
// common device contract.
type scheduler interface {
	Schedule(ctx context.Context) (*kasa.ScheduleState, error)
	AddScheduleRule(ctx context.Context, rule kasa.Rule) (string, error)
	DeleteScheduleRule(ctx context.Context, id string) error
	SetScheduleEnabled(ctx context.Context, enabled bool) error
}

// lookupScheduler resolves the {name} parameter to a device with schedule
// support, writing 404 or 501 as appropriate.
func (s *Server) lookupScheduler(w http.ResponseWriter, r *http.Request) (scheduler, string, bool) {
	dev, name, ok := s.lookup(w, r)
	if !ok {
		return nil, "", false
	}

	sched, ok := dev.(scheduler)
	if !ok {
		writeError(w, http.StatusNotImplemented, ErrCodeNotSupported,
			fmt.Sprintf("device %q (%s) has no native schedule", name, dev.BrandTag()))
		return nil, "", false
	}
	return sched, name, true
}

// handleGetSchedule returns a plug's stored schedule rules.
func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	sched, name, ok := s.lookupScheduler(w, r)
	if !ok {
		return
	}

	state, err := sched.Schedule(r.Context())
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"name": name, "schedule": state})
}

// handleAddScheduleRule stores a new rule on the plug.
func (s *Server) handleAddScheduleRule(w http.ResponseWriter, r *http.Request) {
	sched, name, ok := s.lookupScheduler(w, r)
	if !ok {
		return
	}

	var rule kasa.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	id, err := sched.AddScheduleRule(r.Context(), rule)
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	s.logger.Info("schedule rule added", "device", name, "rule_id", id)
	writeJSON(w, http.StatusCreated, map[string]any{"name": name, "id": id})
}

// handleDeleteScheduleRule removes one rule by id.
func (s *Server) handleDeleteScheduleRule(w http.ResponseWriter, r *http.Request) {
	sched, name, ok := s.lookupScheduler(w, r)
	if !ok {
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "ruleID"))
	if err := sched.DeleteScheduleRule(r.Context(), id); err != nil {
		writeDeviceError(w, err)
		return
	}

	s.logger.Info("schedule rule deleted", "device", name, "rule_id", id)
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "id": id})
}

// handleSetScheduleEnabled flips the plug-global schedule enable flag from a
// {"enabled": bool} body.
func (s *Server) handleSetScheduleEnabled(w http.ResponseWriter, r *http.Request) {
	sched, name, ok := s.lookupScheduler(w, r)
	if !ok {
		return
	}

	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Enabled == nil {
		writeBadRequest(w, `body must be {"enabled": true|false}`)
		return
	}

	if err := sched.SetScheduleEnabled(r.Context(), *body.Enabled); err != nil {
		writeDeviceError(w, err)
		return
	}

	s.logger.Info("schedule enable flag set", "device", name, "enabled", *body.Enabled)
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "enabled": *body.Enabled})
}

var _ scheduler = (*kasa.Plug)(nil)
