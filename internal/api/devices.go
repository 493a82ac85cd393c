package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/hearth/internal/device"
)

// lookup resolves the {name} route parameter against the registry, writing a
// 404 if no such device exists.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (device.Device, string, bool) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	dev, ok := s.registry.Get(name)
	if !ok {
		names := s.registry.Names()
		sort.Strings(names)
		writeNotFound(w, fmt.Sprintf("no device named %q (available: %s)",
			name, strings.Join(names, ", ")))
		return nil, "", false
	}
	return dev, name, true
}

// handleListDevices returns every registered device with its brand and type,
// sorted by name.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	summaries := s.registry.Summaries()

	names := s.registry.Names()
	sort.Strings(names)

	devices := make([]map[string]any, 0, len(summaries))
	for _, name := range names {
		summary := summaries[name]
		devices = append(devices, map[string]any{
			"name":        name,
			"brand":       summary.Brand,
			"device_type": summary.DeviceType,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleGetStatus returns a full status snapshot for one device.
func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	dev, name, ok := s.lookup(w, r)
	if !ok {
		return
	}

	status, err := dev.Status(r.Context())
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"name": name, "status": status})
}

// handleGetState returns just the on/off state for one device.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	dev, name, ok := s.lookup(w, r)
	if !ok {
		return
	}

	on, err := dev.IsOn(r.Context())
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"name": name, "is_on": on})
}

// handleTurnOn powers a device on.
func (s *Server) handleTurnOn(w http.ResponseWriter, r *http.Request) {
	dev, name, ok := s.lookup(w, r)
	if !ok {
		return
	}

	if err := dev.TurnOn(r.Context()); err != nil {
		writeDeviceError(w, err)
		return
	}

	s.logger.Info("device switched on", "device", name)
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "is_on": true})
}

// handleTurnOff powers a device off.
func (s *Server) handleTurnOff(w http.ResponseWriter, r *http.Request) {
	dev, name, ok := s.lookup(w, r)
	if !ok {
		return
	}

	if err := dev.TurnOff(r.Context()); err != nil {
		writeDeviceError(w, err)
		return
	}

	s.logger.Info("device switched off", "device", name)
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "is_on": false})
}

// handleToggle flips a device's power state. The read and the write are two
// round trips, so a device toggled concurrently can land on either state.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	dev, name, ok := s.lookup(w, r)
	if !ok {
		return
	}

	on, err := dev.IsOn(r.Context())
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	if on {
		err = dev.TurnOff(r.Context())
	} else {
		err = dev.TurnOn(r.Context())
	}
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	s.logger.Info("device toggled", "device", name, "is_on", !on)
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "is_on": !on})
}

// handleSetBrightness sets a device's brightness from a {"level": n} body.
func (s *Server) handleSetBrightness(w http.ResponseWriter, r *http.Request) {
	dev, name, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var body struct {
		Level *int `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Level == nil {
		writeBadRequest(w, `body must be {"level": 0-100}`)
		return
	}

	if err := dev.SetBrightness(r.Context(), *body.Level); err != nil {
		writeDeviceError(w, err)
		return
	}

	s.logger.Info("device brightness set", "device", name, "level", *body.Level)
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "brightness": *body.Level})
}

// handleSetColor sets a device's colour from a {"color": "#RRGGBB"} body.
func (s *Server) handleSetColor(w http.ResponseWriter, r *http.Request) {
	dev, name, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var body struct {
		Color string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Color == "" {
		writeBadRequest(w, `body must be {"color": "#RRGGBB"}`)
		return
	}

	if err := dev.SetColor(r.Context(), body.Color); err != nil {
		writeDeviceError(w, err)
		return
	}

	s.logger.Info("device colour set", "device", name, "color", body.Color)
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "color": body.Color})
}
